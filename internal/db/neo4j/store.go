// Package neo4j implements full-text search over the regulation citation graph.
package neo4j

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/kailas-cloud/regsearch/internal/db"
	"github.com/kailas-cloud/regsearch/internal/domain/search/filter"
)

var _ db.FullTextSearcher = (*Store)(nil)

// Config holds connection parameters.
type Config struct {
	URI           string
	Username      string
	Password      string
	Database      string
	FulltextIndex string
}

type queryFunc func(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error)

// Store queries a Neo4j full-text index and counts inbound CITES/AMENDS edges.
type Store struct {
	driver neo4j.DriverWithContext
	index  string
	run    queryFunc
}

// NewStore connects and verifies connectivity.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("neo4j uri is required")
	}
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j: create driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: verify connectivity: %w", err)
	}

	s := &Store{driver: driver, index: indexName(cfg.FulltextIndex)}
	s.run = func(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
		res, err := neo4j.ExecuteQuery(ctx, driver, cypher, params,
			neo4j.EagerResultTransformer,
			neo4j.ExecuteQueryWithDatabase(cfg.Database),
			neo4j.ExecuteQueryWithReadersRouting(),
		)
		if err != nil {
			return nil, err
		}
		return res.Records, nil
	}
	return s, nil
}

func indexName(name string) string {
	if name == "" {
		return "regulation_text"
	}
	return name
}

// Ping verifies connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("neo4j ping: %w", err)
	}
	return nil
}

// Close releases the driver.
func (s *Store) Close(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Close(ctx)
}

const searchCypher = `CALL db.index.fulltext.queryNodes($index, $text) YIELD node, score
WHERE ($jurisdiction = '' OR node.jurisdiction = $jurisdiction)
  AND ($doc_type = '' OR node.doc_type = $doc_type)
  AND ($date_from IS NULL OR node.effective_date >= date($date_from))
  AND ($date_to IS NULL OR node.effective_date <= date($date_to))
OPTIONAL MATCH (node)<-[r:CITES|AMENDS]-()
WITH node, score, count(r) AS refs
RETURN node.document_id AS document_id, node.title AS title, node.text AS content,
       node.citation AS citation, node.jurisdiction AS jurisdiction, node.doc_type AS doc_type,
       toString(node.effective_date) AS effective_date, score, refs
ORDER BY score DESC, refs DESC
LIMIT $limit`

// SearchText runs the full-text query. Entry fields carry the node text and
// the inbound reference count under db.FieldReferences.
func (s *Store) SearchText(ctx context.Context, q *db.FullTextQuery) (*db.SearchResult, error) {
	text := luceneQuery(q.Text, q.Terms)
	if text == "" {
		return nil, fmt.Errorf("query text is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	params, err := cypherParams(q.Filters)
	if err != nil {
		return nil, err
	}
	params["index"] = s.index
	params["text"] = text
	params["limit"] = int64(q.Limit)

	records, err := s.run(ctx, searchCypher, params)
	if err != nil {
		return nil, &db.Error{Op: db.OpFulltext, Err: err}
	}

	entries := make([]db.SearchEntry, 0, len(records))
	for _, rec := range records {
		id := stringValue(rec, "document_id")
		if id == "" {
			continue
		}
		score, _ := rec.Get("score")
		refs, _ := rec.Get("refs")
		entries = append(entries, db.SearchEntry{
			Key:   id,
			Score: toFloat(score),
			Fields: map[string]string{
				db.FieldDocumentID:    id,
				db.FieldTitle:         stringValue(rec, "title"),
				db.FieldContent:       stringValue(rec, "content"),
				db.FieldCitation:      stringValue(rec, "citation"),
				db.FieldJurisdiction:  stringValue(rec, "jurisdiction"),
				db.FieldDocType:       stringValue(rec, "doc_type"),
				db.FieldEffectiveDate: stringValue(rec, "effective_date"),
				db.FieldReferences:    strconv.FormatInt(int64(toFloat(refs)), 10),
			},
		})
	}
	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

func cypherParams(expr filter.Expression) (map[string]any, error) {
	params := map[string]any{
		"jurisdiction": "",
		"doc_type":     "",
		"date_from":    nil,
		"date_to":      nil,
	}
	for _, c := range expr.Must() {
		switch {
		case c.IsMatch() && c.Key() == db.FieldJurisdiction:
			params["jurisdiction"] = c.Match()
		case c.IsMatch() && c.Key() == db.FieldDocType:
			params["doc_type"] = c.Match()
		case c.IsRange() && c.Key() == db.FieldEffectiveDate:
			if v := c.Range().Min(); v != nil {
				params["date_from"] = unixDate(*v)
			}
			if v := c.Range().Max(); v != nil {
				params["date_to"] = unixDate(*v)
			}
		default:
			return nil, fmt.Errorf("unsupported filter on %q", c.Key())
		}
	}
	return params, nil
}

func stringValue(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

// luceneQuery ORs the query and its alternatives, quoting phrases.
func luceneQuery(text string, terms []string) string {
	var parts []string
	seen := map[string]bool{}
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		escaped := luceneEscaper.Replace(t)
		if strings.Contains(t, " ") {
			escaped = `"` + escaped + `"`
		}
		parts = append(parts, escaped)
	}
	add(text)
	for _, t := range terms {
		add(t)
	}
	return strings.Join(parts, " OR ")
}

var luceneEscaper = strings.NewReplacer(
	`\`, `\\`, `+`, `\+`, `-`, `\-`, `&`, `\&`, `|`, `\|`, `!`, `\!`,
	`(`, `\(`, `)`, `\)`, `{`, `\{`, `}`, `\}`, `[`, `\[`, `]`, `\]`,
	`^`, `\^`, `"`, `\"`, `~`, `\~`, `*`, `\*`, `?`, `\?`, `:`, `\:`, `/`, `\/`,
)

func unixDate(v float64) string {
	return time.Unix(int64(v), 0).UTC().Format(time.DateOnly)
}
