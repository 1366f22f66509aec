package fusion

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// containsExactTerm reports whether snippet contains any term as a whole word
// or, for multi-word terms, as a whole phrase. Matching is case-insensitive.
func containsExactTerm(snippet string, terms []string) bool {
	if snippet == "" || len(terms) == 0 {
		return false
	}
	lower := strings.ToLower(snippet)
	for _, t := range terms {
		if t != "" && containsWord(lower, t) {
			return true
		}
	}
	return false
}

func containsWord(text, term string) bool {
	for start := 0; start < len(text); {
		i := strings.Index(text[start:], term)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(term)
		if boundaryBefore(text, i) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		start = i + size
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}
