package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/policyqa/internal/model"
)

const testFooter = "\nAcme Life FSP 123. Page {page} of \n"

func TestFooterNormalizer_MovesSentenceToEnd(t *testing.T) {
	normalize := FooterNormalizer(testFooter)
	sentence := "\nAcme Life FSP 123. Page 3 of \n"

	positions := map[string]string{
		"start":  sentence + "Benefits apply from age 18.",
		"middle": "Benefits apply" + sentence + " from age 18.",
		"end":    "Benefits apply from age 18." + sentence,
	}
	for name, page := range positions {
		t.Run(name, func(t *testing.T) {
			got := normalize(page, 2)
			assert.True(t, strings.HasSuffix(got, sentence))
			assert.Equal(t, 1, strings.Count(got, sentence))
		})
	}
}

func TestFooterNormalizer_Idempotent(t *testing.T) {
	normalize := FooterNormalizer(testFooter)
	page := "Intro\nAcme Life FSP 123. Page 1 of \nWaiting period is six months."

	once := normalize(page, 0)
	twice := normalize(once, 0)
	assert.Equal(t, once, twice)
}

func TestFooterNormalizer_OtherPageNumberUntouched(t *testing.T) {
	normalize := FooterNormalizer(testFooter)
	page := "Text\nAcme Life FSP 123. Page 7 of \n"

	got := normalize(page, 0)
	// The page 7 footer is not this page's sentence, so only the page 1
	// sentence is appended.
	assert.Equal(t, "Text\nAcme Life FSP 123. Page 7 of\nAcme Life FSP 123. Page 1 of \n", got)
}

func TestFooterNormalizer_ToleratesSpacing(t *testing.T) {
	normalize := FooterNormalizer(testFooter)
	// Same words, wrapped and spaced differently by the extractor.
	page := "Cover starts at R5 000.\nAcme  Life\nFSP 123.   Page 2 of\nClaims are paid in 48 hours."

	got := normalize(page, 1)
	assert.Equal(t, "Cover starts at R5 000.\nClaims are paid in 48 hours.\nAcme Life FSP 123. Page 2 of \n", got)
}

func TestNormalizers_CapitecExtractedText(t *testing.T) {
	capitec := DefaultNormalizers().For(model.InsurerEntry{Name: "Capitec"})
	// Footer of page 1 as the text reader emits it: single spaces, one line.
	page := "Capitec Bank is an authorised financial service (FSP46669) and registered credit provider (NCRCP13). " +
		"Capitec Bank Limited Reg. No.: 1980/003695/06 Unique Document No.: Template / 801 / V1 2.0 - 14/11/2021 (ddmmccyy) Page 2 of\n" +
		"Waiting period is six months."

	got := capitec(page, 1)
	assert.True(t, strings.HasPrefix(got, "Waiting period is six months.\nCapitec Bank"))
	assert.Equal(t, 1, strings.Count(got, "FSP46669"))
	assert.True(t, strings.HasSuffix(got, "Page 2 of \n"))
}

func TestFooterNormalizer_RepeatedSentence(t *testing.T) {
	normalize := FooterNormalizer("ab")
	// Removing one "ab" from "aabb" leaves another.
	got := normalize("xaabby", 0)
	assert.Equal(t, "xyab", got)
}

func TestIdentity(t *testing.T) {
	assert.Equal(t, "unchanged", Identity("unchanged", 4))
}

func TestNormalizers_For(t *testing.T) {
	hooks := DefaultNormalizers()

	capitec := hooks.For(model.InsurerEntry{Name: "Capitec"})
	got := capitec("page text", 0)
	assert.True(t, strings.HasSuffix(got, "Page 1 of \n"))
	assert.True(t, strings.HasPrefix(got, "page text\nCapitec Bank"))

	// Lookup ignores case and spacing.
	spaced := hooks.For(model.InsurerEntry{Name: "  CAPITEC "})
	assert.Equal(t, got, spaced("page text", 0))

	other := hooks.For(model.InsurerEntry{Name: "Old Mutual"})
	assert.Equal(t, "page text", other("page text", 0))
}

func TestNormalizers_BoilerplateWins(t *testing.T) {
	hooks := DefaultNormalizers()
	entry := model.InsurerEntry{Name: "Capitec", Boilerplate: "[p{page}]"}

	assert.Equal(t, "body[p2]", hooks.For(entry)("[p2]body", 1))
}

func TestNormalizers_NilTable(t *testing.T) {
	var hooks *Normalizers
	assert.Equal(t, "x", hooks.For(model.InsurerEntry{Name: "Capitec"})("x", 0))
}

func TestNormalizers_Register(t *testing.T) {
	hooks := NewNormalizers()
	hooks.Register("Old Mutual", func(text string, _ int) string { return strings.ToUpper(text) })

	assert.Equal(t, "ABC", hooks.For(model.InsurerEntry{Name: "oldmutual"})("abc", 0))
}
