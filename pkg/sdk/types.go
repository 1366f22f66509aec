package sdk

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	Query        string `json:"q"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	DocType      string `json:"doc_type,omitempty"`
	DateFrom     string `json:"date_from,omitempty"`
	DateTo       string `json:"date_to,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}

// SearchItem is one ranked result.
type SearchItem struct {
	DocumentID        string   `json:"document_id"`
	Title             string   `json:"title"`
	Snippet           string   `json:"snippet"`
	Score             float64  `json:"score"`
	ContributingTiers []string `json:"contributing_tiers"`
	Citation          string   `json:"citation,omitempty"`
	EffectiveDate     string   `json:"effective_date,omitempty"`
	Jurisdiction      string   `json:"jurisdiction,omitempty"`
	DocType           string   `json:"doc_type,omitempty"`
}

// SearchResponse is one page of results.
type SearchResponse struct {
	Items  []SearchItem `json:"items"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
	TookMs int64        `json:"took_ms"`
}

// ContextRequest is the body of POST /v1/context.
type ContextRequest struct {
	Question     string `json:"question"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	DocType      string `json:"doc_type,omitempty"`
	DateFrom     string `json:"date_from,omitempty"`
	DateTo       string `json:"date_to,omitempty"`
}

// Passage is one numbered piece of context.
type Passage struct {
	N          int     `json:"n"`
	DocumentID string  `json:"document_id"`
	Citation   string  `json:"citation,omitempty"`
	Title      string  `json:"title"`
	Snippet    string  `json:"snippet"`
	Score      float64 `json:"score"`
}

// Source resolves a "[n]" marker.
type Source struct {
	N          int    `json:"n"`
	DocumentID string `json:"document_id"`
	Citation   string `json:"citation,omitempty"`
}

// ContextResponse is assembled retrieval context.
type ContextResponse struct {
	Question  string    `json:"question"`
	Text      string    `json:"text"`
	Passages  []Passage `json:"passages"`
	Sources   []Source  `json:"sources"`
	Truncated bool      `json:"truncated"`
	TookMs    int64     `json:"took_ms"`
}

// HealthResponse is the server health report.
type HealthResponse struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	CatalogSize int               `json:"catalog_size"`
}
