// Package docfields converts backend search entries into tier results.
package docfields

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/regsearch/internal/db"
	"github.com/kailas-cloud/regsearch/internal/domain/search/filter"
	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
)

// SnippetWidth is the default snippet length in bytes.
const SnippetWidth = 300

// Expression translates query filters into a backend filter expression.
// Dates become an inclusive unix-seconds range on db.FieldEffectiveDate.
func Expression(f query.Filters) filter.Expression {
	var conds []filter.Condition
	if j := f.Jurisdiction(); j != "" {
		if c, err := filter.NewMatch(db.FieldJurisdiction, j); err == nil {
			conds = append(conds, c)
		}
	}
	if t := f.DocType(); t != "" {
		if c, err := filter.NewMatch(db.FieldDocType, t); err == nil {
			conds = append(conds, c)
		}
	}
	var lower, upper *float64
	if from, ok := f.DateFrom(); ok {
		v := float64(from.Unix())
		lower = &v
	}
	if to, ok := f.DateTo(); ok {
		v := float64(to.Unix())
		upper = &v
	}
	if lower != nil || upper != nil {
		if r, err := filter.NewRangeFilter(lower, upper); err == nil {
			if c, err := filter.NewRange(db.FieldEffectiveDate, r); err == nil {
				conds = append(conds, c)
			}
		}
	}
	return filter.NewExpression(conds...)
}

// ToRaw maps a search entry onto a tier result. The document id comes from
// db.FieldDocumentID, falling back to the entry key. The snippet is the
// explicit snippet field, else a window of content around the first term.
func ToRaw(id tier.ID, e db.SearchEntry, terms []string) result.Raw {
	docID := e.Fields[db.FieldDocumentID]
	if docID == "" {
		docID = e.Key
	}
	snippet := e.Fields[db.FieldSnippet]
	if snippet == "" {
		snippet = Snippet(e.Fields[db.FieldContent], terms, SnippetWidth)
	}
	return result.Raw{
		DocumentID:    docID,
		Title:         e.Fields[db.FieldTitle],
		Snippet:       snippet,
		NativeScore:   e.Score,
		SourceTier:    id,
		Citation:      e.Fields[db.FieldCitation],
		EffectiveDate: ParseDate(e.Fields[db.FieldEffectiveDate]),
		Jurisdiction:  e.Fields[db.FieldJurisdiction],
		DocType:       e.Fields[db.FieldDocType],
	}
}

// ParseDate accepts unix seconds, YYYY-MM-DD or RFC 3339. Anything else is zero.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(n, 0).UTC()
	}
	if t, err := time.Parse(query.DateLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// Snippet returns at most width bytes of text, centred on the first
// case-insensitive occurrence of any term. Cuts fall on rune boundaries.
func Snippet(text string, terms []string, width int) string {
	text = strings.TrimSpace(text)
	if len(text) <= width {
		return text
	}
	lower := strings.ToLower(text)
	at := -1
	for _, t := range terms {
		if t == "" {
			continue
		}
		if i := strings.Index(lower, strings.ToLower(t)); i >= 0 && (at < 0 || i < at) {
			at = i
		}
	}
	start := 0
	if at > width/3 {
		start = at - width/3
	}
	end := min(start+width, len(text))
	if end-start < width {
		start = max(0, end-width)
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start++
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end--
	}
	out := strings.TrimSpace(text[start:end])
	if start > 0 {
		out = "…" + out
	}
	if end < len(text) {
		out += "…"
	}
	return out
}
