package graph

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
)

// highlight returns byte spans in text where a term occurs on word boundaries,
// case-insensitively. Overlapping spans are merged.
func highlight(text string, terms []string) []result.Span {
	lower := strings.ToLower(text)
	var spans []result.Span
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		for from := 0; from < len(lower); {
			i := strings.Index(lower[from:], t)
			if i < 0 {
				break
			}
			start := from + i
			end := start + len(t)
			if boundaryBefore(lower, start) && boundaryAfter(lower, end) {
				spans = append(spans, result.Span{Start: start, End: end})
			}
			from = start + max(1, len(t))
		}
	}
	return merge(spans)
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWord(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWord(r)
}

func isWord(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func merge(spans []result.Span) []result.Span {
	if len(spans) < 2 {
		return spans
	}
	slices.SortFunc(spans, func(a, b result.Span) int { return cmp.Compare(a.Start, b.Start) })
	out := spans[:1]
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.Start <= last.End {
			last.End = max(last.End, s.End)
			continue
		}
		out = append(out, s)
	}
	return out
}
