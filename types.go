package regsearch

import (
	"time"

	"github.com/kailas-cloud/regsearch/internal/domain"
	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
	"github.com/kailas-cloud/regsearch/internal/usecase/cascade"
)

// ErrInvalidQuery is returned for input rejected before any tier is probed.
// It is the only error Search reports; backend failures degrade results instead.
var ErrInvalidQuery = domain.ErrInvalidQuery

// Tier identifies a retrieval tier.
type Tier = tier.ID

// Tiers in descending priority.
const (
	TierHybrid     = tier.Hybrid
	TierSection    = tier.Section
	TierGraph      = tier.Graph
	TierRelational = tier.Relational
	TierMetadata   = tier.Metadata
)

// Custom backends implement Adapter and receive the normalized Query.
type (
	Adapter = cascade.Adapter
	Query   = query.SearchQuery
	Hit     = result.Raw
)

// Filters restrict results. Dates use YYYY-MM-DD.
type Filters struct {
	Jurisdiction string
	DocType      string
	DateFrom     string
	DateTo       string
}

func (f Filters) toInput() query.FilterInput {
	return query.FilterInput{
		Jurisdiction: f.Jurisdiction,
		DocType:      f.DocType,
		DateFrom:     f.DateFrom,
		DateTo:       f.DateTo,
	}
}

// SearchRequest describes one search.
type SearchRequest struct {
	Query   string
	Filters Filters
	Limit   int // 0 selects the default of 10
	Offset  int
}

// Result is one fused hit.
type Result struct {
	DocumentID        string
	Title             string
	Snippet           string
	Score             float64
	ContributingTiers []Tier
	Citation          string
	EffectiveDate     time.Time
	Jurisdiction      string
	DocType           string
}

// SearchResponse is one page of fused results.
type SearchResponse struct {
	Results []Result
	// Total counts fused results before paging.
	Total int
	Took  time.Duration
}

// Passage is one numbered piece of RAG context.
type Passage struct {
	N          int
	DocumentID string
	Citation   string
	Title      string
	Snippet    string
	Score      float64
}

// Source maps a "[n]" marker back to its document.
type Source struct {
	N          int
	DocumentID string
	Citation   string
}

// Context is assembled retrieval context for answer generation.
type Context struct {
	Question  string
	Text      string
	Passages  []Passage
	Sources   []Source
	Truncated bool
	Took      time.Duration
}

// HealthReport is the per-component health of the backends.
type HealthReport struct {
	Healthy     bool
	Checks      map[string]bool
	CatalogSize int
}
