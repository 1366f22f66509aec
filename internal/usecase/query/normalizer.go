// Package query turns raw user input into a normalized, synonym-expanded SearchQuery.
package query

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/kailas-cloud/regsearch/internal/domain"
	q "github.com/kailas-cloud/regsearch/internal/domain/search/query"
)

// sectionToken matches citation fragments that must survive punctuation stripping:
// 12(3)(a), 7.1, s.7, ss.12(1), §5, §§ 3-4 style numbering.
var sectionToken = regexp.MustCompile(`^(§{1,2}|s{1,2}\.)?\d+[a-z]?(\.\d+[a-z]?)*(\([0-9a-z]{1,4}\))*$`)

var quoteReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "«", `"`, "»", `"`,
	"‘", "'", "’", "'",
)

// Normalize validates raw input and builds a SearchQuery.
// Limit 0 selects the default; limits above the cap are clamped.
func Normalize(raw string, filters q.FilterInput, limit, offset int) (q.SearchQuery, error) {
	if len(raw) > q.MaxQueryLength {
		return q.SearchQuery{}, domain.NewInvalidQuery("query exceeds %d bytes", q.MaxQueryLength)
	}
	if !utf8.ValidString(raw) {
		return q.SearchQuery{}, domain.NewInvalidQuery("query is not valid UTF-8")
	}
	if offset < 0 {
		return q.SearchQuery{}, domain.NewInvalidQuery("offset must not be negative")
	}
	if offset > q.MaxOffset {
		return q.SearchQuery{}, domain.NewInvalidQuery("offset exceeds %d", q.MaxOffset)
	}
	if limit < 0 {
		return q.SearchQuery{}, domain.NewInvalidQuery("limit must not be negative")
	}
	if limit == 0 {
		limit = q.DefaultLimit
	}
	limit = min(limit, q.MaxLimit)

	f, err := normalizeFilters(filters)
	if err != nil {
		return q.SearchQuery{}, err
	}

	terms, phrases := tokenize(raw)
	if len(terms) == 0 && len(phrases) == 0 {
		return q.SearchQuery{}, domain.NewInvalidQuery("query is empty")
	}

	return q.New(raw, terms, phrases, f, limit, offset), nil
}

// tokenize splits text into unquoted terms and quoted phrases.
// An unbalanced trailing quote is treated as ordinary punctuation.
func tokenize(raw string) (terms, phrases []string) {
	text := strings.ToLower(norm.NFKC.String(quoteReplacer.Replace(raw)))

	segments := strings.Split(text, `"`)
	closed := len(segments)%2 == 1
	for i, seg := range segments {
		quoted := i%2 == 1 && (closed || i < len(segments)-1)
		ws := words(seg)
		if len(ws) == 0 {
			continue
		}
		if quoted {
			phrases = appendUnique(phrases, strings.Join(ws, " "))
			continue
		}
		terms = append(terms, ws...)
	}
	return terms, phrases
}

// words splits a segment on whitespace and strips punctuation from each token,
// keeping section-number tokens intact.
func words(seg string) []string {
	var out []string
	for _, field := range strings.Fields(seg) {
		field = strings.Trim(field, ".,;:!?")
		if field == "" {
			continue
		}
		if sectionToken.MatchString(field) {
			out = append(out, field)
			continue
		}
		out = append(out, strings.Fields(stripPunct(field))...)
	}
	return out
}

// stripPunct drops apostrophes, keeps letters, digits and §, and turns
// any other rune into a separator.
func stripPunct(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\'':
		case unicode.IsLetter(r), unicode.IsNumber(r), r == '§':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func normalizeFilters(in q.FilterInput) (q.Filters, error) {
	from, err := parseDate("date_from", in.DateFrom)
	if err != nil {
		return q.Filters{}, err
	}
	to, err := parseDate("date_to", in.DateTo)
	if err != nil {
		return q.Filters{}, err
	}
	if from != nil && to != nil && from.After(*to) {
		return q.Filters{}, domain.NewInvalidQuery("date_from %s is after date_to %s", in.DateFrom, in.DateTo)
	}
	return q.NewFilters(
		strings.ToLower(strings.TrimSpace(in.Jurisdiction)),
		strings.ToLower(strings.TrimSpace(in.DocType)),
		from, to,
	), nil
}

func parseDate(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil //nolint:nilnil // absent bound
	}
	t, err := time.Parse(q.DateLayout, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return nil, domain.NewInvalidQuery("%s must be YYYY-MM-DD, got %q", field, s)
		}
	}
	return &t, nil
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
