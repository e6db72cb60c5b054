package match

import (
	"strings"
	"unicode"
)

// titleWords normalizes a title into a set of tokens: lowercase, drop every
// rune that is neither a word character nor whitespace, split on whitespace.
func titleWords(title string) map[string]struct{} {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	words := make(map[string]struct{})
	for _, w := range strings.Fields(b.String()) {
		words[w] = struct{}{}
	}
	return words
}

// HasCommonWord reports whether two titles share at least one normalized
// word. Titles that normalize to empty sets never match.
func HasCommonWord(titleA, titleB string) bool {
	wordsA := titleWords(titleA)
	if len(wordsA) == 0 {
		return false
	}

	for w := range titleWords(titleB) {
		if _, ok := wordsA[w]; ok {
			return true
		}
	}
	return false
}
