package chi

import (
	"time"

	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
)

// Error codes.
const (
	codeInvalidQuery  = "invalid_query"
	codeInternalError = "internal_error"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchRequest is the POST /v1/search body.
type SearchRequest struct {
	Query        string `json:"q"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	DocType      string `json:"doc_type,omitempty"`
	DateFrom     string `json:"date_from,omitempty"`
	DateTo       string `json:"date_to,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Offset       int    `json:"offset,omitempty"`
}

func (r SearchRequest) filters() query.FilterInput {
	return query.FilterInput{
		Jurisdiction: r.Jurisdiction,
		DocType:      r.DocType,
		DateFrom:     r.DateFrom,
		DateTo:       r.DateTo,
	}
}

// SearchItem is one ranked result.
type SearchItem struct {
	DocumentID        string    `json:"document_id"`
	Title             string    `json:"title"`
	Snippet           string    `json:"snippet"`
	Score             float64   `json:"score"`
	ContributingTiers []tier.ID `json:"contributing_tiers"`
	Citation          string    `json:"citation,omitempty"`
	EffectiveDate     string    `json:"effective_date,omitempty"`
	Jurisdiction      string    `json:"jurisdiction,omitempty"`
	DocType           string    `json:"doc_type,omitempty"`
}

// SearchResponse is the reply of both search routes.
type SearchResponse struct {
	Items  []SearchItem `json:"items"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
	TookMs int64        `json:"took_ms"`
}

// ContextRequest is the POST /v1/context body.
type ContextRequest struct {
	Question     string `json:"question"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	DocType      string `json:"doc_type,omitempty"`
	DateFrom     string `json:"date_from,omitempty"`
	DateTo       string `json:"date_to,omitempty"`
}

// HealthResponse is the GET /health reply.
type HealthResponse struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	CatalogSize int               `json:"catalog_size"`
}

func searchItemFromResult(r result.Fused) SearchItem {
	item := SearchItem{
		DocumentID:        r.DocumentID,
		Title:             r.Title,
		Snippet:           r.Snippet,
		Score:             r.Score,
		ContributingTiers: r.ContributingTiers,
		Citation:          r.Citation,
		Jurisdiction:      r.Jurisdiction,
		DocType:           r.DocType,
	}
	if !r.EffectiveDate.IsZero() {
		item.EffectiveDate = r.EffectiveDate.UTC().Format(time.DateOnly)
	}
	return item
}

// effectiveLimit mirrors the normalizer's defaulting so responses echo what was served.
func effectiveLimit(limit int) int {
	if limit <= 0 {
		return query.DefaultLimit
	}
	return min(limit, query.MaxLimit)
}
