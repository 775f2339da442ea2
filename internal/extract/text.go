package extract

import (
	"strings"
	"unicode"
)

// span is a byte range [start, end) of a page's text
type span struct {
	start, end int
}

// splitSentences returns the byte spans of the sentences in text, trimmed of
// surrounding whitespace. A sentence ends at '.', '!' or '?' followed by
// whitespace, or at a blank line. Policy documents use many headings and
// bullets without terminators, so a blank line is a boundary too.
func splitSentences(text string) []span {
	var spans []span
	start := 0

	emit := func(end int) {
		s, e := trimSpan(text, start, end)
		if s < e {
			spans = append(spans, span{start: s, end: e})
		}
		start = end
	}

	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '.', '!', '?':
			if i+1 == len(text) || isSpaceByte(text[i+1]) {
				emit(i + 1)
			}
		case '\n':
			if j := skipInlineSpace(text, i+1); j < len(text) && text[j] == '\n' {
				emit(i)
			}
		}
	}
	emit(len(text))
	return spans
}

func skipInlineSpace(text string, i int) int {
	for i < len(text) && (text[i] == ' ' || text[i] == '\t' || text[i] == '\r') {
		i++
	}
	return i
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func trimSpan(text string, start, end int) (int, int) {
	for start < end && isSpaceByte(text[start]) {
		start++
	}
	for end > start && isSpaceByte(text[end-1]) {
		end--
	}
	return start, end
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "any": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "can": true, "do": true, "does": true, "for": true, "from": true,
	"get": true, "has": true, "have": true, "how": true, "i": true, "if": true, "in": true,
	"is": true, "it": true, "me": true, "my": true, "of": true, "on": true, "or": true,
	"our": true, "should": true, "than": true, "that": true, "the": true, "then": true,
	"there": true, "this": true, "to": true, "was": true, "we": true, "were": true,
	"what": true, "when": true, "where": true, "which": true, "who": true, "why": true,
	"will": true, "with": true, "you": true, "your": true, "much": true, "many": true,
}

// quantityCues mark questions whose answer is usually a number
var quantityCues = map[string]bool{
	"age": true, "amount": true, "cost": true, "limit": true, "long": true,
	"maximum": true, "max": true, "minimum": true, "min": true, "number": true,
	"old": true, "percent": true, "percentage": true, "premium": true, "year": true,
}

// words splits text into lowercase runs of letters and digits
func words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// terms returns the stemmed content words of text in order
func terms(text string) []string {
	var out []string
	for _, w := range words(text) {
		if stopwords[w] {
			continue
		}
		out = append(out, stem(w))
	}
	return out
}

// stem strips the common English inflections, enough to match "covered"
// with "cover" and "ages" with "age"
func stem(w string) string {
	switch {
	case len(w) > 5 && strings.HasSuffix(w, "ing"):
		return w[:len(w)-3]
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 4 && strings.HasSuffix(w, "ed"):
		return w[:len(w)-2]
	case len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		return w[:len(w)-1]
	}
	return w
}

func hasDigit(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			return true
		}
	}
	return false
}
