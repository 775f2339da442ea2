package pipeline

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/ppiankov/policyqa/internal/model"
)

// PagePlaceholder is replaced with the 1-based page number in footer templates
const PagePlaceholder = "{page}"

// capitecFooter is the legal footer Capitec prints at the bottom of every
// page. Text extraction tends to place it at the top of the following page.
// The copy this was taken from ended in a stray "&quot", an HTML escaping
// artifact that never appears in page text, so it is left out.
const capitecFooter = "\nCapitec Bank is an authorised financial service (FSP46669)  and registered credit provider (NCRCP13). " +
	"Capitec Bank Limited Reg.  No.: 1980/003695/06  \n" +
	"Unique Document No.: Template  / 801 / V1 2.0 - 14/11/2021 (ddmmccyy)  Page " + PagePlaceholder + " of \n"

// Normalizer rewrites the extracted text of one page. pageNum is 0-based.
type Normalizer func(text string, pageNum int) string

// Identity leaves page text untouched
func Identity(text string, _ int) string {
	return text
}

// FooterNormalizer moves a known per-page footer sentence to the end of
// the page: every occurrence of the sentence for that page is removed and a
// single clean copy is appended. Occurrences match regardless of how the
// extractor spaced or wrapped the words. Applying it twice gives the same
// text as applying it once.
func FooterNormalizer(template string) Normalizer {
	return func(text string, pageNum int) string {
		sentence := strings.ReplaceAll(template, PagePlaceholder, strconv.Itoa(pageNum+1))
		re := footerPattern(sentence)
		if re == nil {
			return text
		}
		for re.MatchString(text) {
			text = re.ReplaceAllStringFunc(text, func(m string) string {
				// Keep a line break where the footer sat between words.
				if strings.TrimSpace(m) != m {
					return "\n"
				}
				return ""
			})
		}
		return strings.TrimSpace(text) + sentence
	}
}

// footerPattern matches sentence with any run of whitespace between its
// words, swallowing the whitespace around it
func footerPattern(sentence string) *regexp.Regexp {
	words := strings.Fields(sentence)
	if len(words) == 0 {
		return nil
	}
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\s*` + strings.Join(words, `\s+`) + `\s*`)
}

// Normalizers maps insurer identity to the page normalization hook used
// when ingesting that insurer's documents
type Normalizers struct {
	mu    sync.RWMutex
	hooks map[string]Normalizer
}

// NewNormalizers creates an empty hook table
func NewNormalizers() *Normalizers {
	return &Normalizers{hooks: make(map[string]Normalizer)}
}

// DefaultNormalizers returns the hooks for insurers with known extraction quirks
func DefaultNormalizers() *Normalizers {
	n := NewNormalizers()
	n.Register("Capitec", FooterNormalizer(capitecFooter))
	return n
}

// Register attaches fn to the named insurer, replacing any previous hook
func (n *Normalizers) Register(insurer string, fn Normalizer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hooks[model.InsurerKey(insurer)] = fn
}

// For returns the hook for entry. A boilerplate template on the entry wins
// over a registered hook; insurers without either get Identity.
func (n *Normalizers) For(entry model.InsurerEntry) Normalizer {
	if entry.Boilerplate != "" {
		return FooterNormalizer(entry.Boilerplate)
	}
	if n == nil {
		return Identity
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	if fn, ok := n.hooks[entry.Key()]; ok {
		return fn
	}
	return Identity
}
