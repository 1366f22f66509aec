package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/regsearch/internal/db"
	"github.com/kailas-cloud/regsearch/internal/domain/search/filter"
)

// Parameters: $1 websearch text, $2 raw text for trigram similarity,
// $3 jurisdiction, $4 doc type, $5 date from, $6 date to, $7 limit.
func buildSearchSQL(table string) string {
	return `WITH q AS (SELECT websearch_to_tsquery('english', $1) AS tsq)
SELECT d.document_id, d.title,
       ts_headline('english', d.body, q.tsq, 'MaxFragments=1, MaxWords=35, MinWords=10') AS snippet,
       COALESCE(d.citation, ''), COALESCE(d.jurisdiction, ''), COALESCE(d.doc_type, ''),
       d.effective_date,
       GREATEST(ts_rank_cd(d.search_vector, q.tsq), similarity(d.title, $2)) AS score
FROM ` + table + ` d, q
WHERE (d.search_vector @@ q.tsq OR d.title % $2)
  AND ($3 = '' OR d.jurisdiction = $3)
  AND ($4 = '' OR d.doc_type = $4)
  AND ($5::date IS NULL OR d.effective_date >= $5::date)
  AND ($6::date IS NULL OR d.effective_date <= $6::date)
ORDER BY score DESC, COALESCE(d.effective_date, DATE '1970-01-01') DESC, d.document_id
LIMIT $7`
}

// websearchText ORs the expanded alternatives into websearch syntax.
// Multi-word alternatives are quoted so they match as phrases.
func websearchText(text string, terms []string) string {
	parts := []string{text}
	seen := map[string]bool{text: true}
	for _, t := range terms {
		t = strings.TrimSpace(strings.ReplaceAll(t, `"`, ""))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		if strings.Contains(t, " ") {
			t = `"` + t + `"`
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, " or ")
}

type filterArgs struct {
	jurisdiction string
	docType      string
	from         *time.Time
	to           *time.Time
}

func sqlFilters(expr filter.Expression) (filterArgs, error) {
	var f filterArgs
	for _, c := range expr.Must() {
		switch {
		case c.IsMatch() && c.Key() == db.FieldJurisdiction:
			f.jurisdiction = c.Match()
		case c.IsMatch() && c.Key() == db.FieldDocType:
			f.docType = c.Match()
		case c.IsRange() && c.Key() == db.FieldEffectiveDate:
			if v := c.Range().Min(); v != nil {
				t := time.Unix(int64(*v), 0).UTC()
				f.from = &t
			}
			if v := c.Range().Max(); v != nil {
				t := time.Unix(int64(*v), 0).UTC()
				f.to = &t
			}
		default:
			return filterArgs{}, fmt.Errorf("unsupported filter on %q", c.Key())
		}
	}
	return f, nil
}
