package db

import "github.com/kailas-cloud/regsearch/internal/domain/search/filter"

// Well-known document fields shared by every backend.
const (
	FieldDocumentID    = "document_id"
	FieldTitle         = "title"
	FieldContent       = "content"
	FieldSnippet       = "snippet"
	FieldCitation      = "citation"
	FieldJurisdiction  = "jurisdiction"
	FieldDocType       = "doc_type"
	FieldEffectiveDate = "effective_date"
	FieldReferences    = "refs"
)

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filters      filter.Expression
	Vector       []float32
	K            int
	ReturnFields []string
}

// TextQuery is the input for BM25 text search. Terms are OR-ed; multi-word
// terms are searched as phrases.
type TextQuery struct {
	IndexName    string
	Field        string
	Terms        []string
	Filters      filter.Expression
	TopK         int
	ReturnFields []string
}

// FullTextQuery is the input for PostgreSQL and Neo4j full-text search.
// Text is the raw normalized query; Terms are the expanded alternatives.
type FullTextQuery struct {
	Text    string
	Terms   []string
	Filters filter.Expression
	Limit   int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
