package result

import (
	"time"

	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
)

// Span marks a highlighted byte range inside a snippet.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Raw is a single hit as returned by one tier, scored on that tier's native scale.
type Raw struct {
	DocumentID    string
	Title         string
	Snippet       string
	NativeScore   float64
	SourceTier    tier.ID
	Citation      string
	EffectiveDate time.Time
	Jurisdiction  string
	DocType       string

	// Sub-scores reported by the hybrid tier.
	LexicalScore float64
	VectorScore  float64

	Highlights []Span
	Metadata   map[string]string
}

// Fused is a deduplicated hit carrying a score comparable across tiers.
type Fused struct {
	DocumentID        string    `json:"document_id"`
	Title             string    `json:"title"`
	Snippet           string    `json:"snippet"`
	Score             float64   `json:"score"`
	ContributingTiers []tier.ID `json:"contributing_tiers"`
	Citation          string    `json:"citation,omitempty"`
	EffectiveDate     time.Time `json:"effective_date,omitzero"`
	Jurisdiction      string    `json:"jurisdiction,omitempty"`
	DocType           string    `json:"doc_type,omitempty"`
}

// Clone returns a deep copy of the fused result.
func (f Fused) Clone() Fused {
	f.ContributingTiers = append([]tier.ID(nil), f.ContributingTiers...)
	return f
}

// CloneAll deep-copies a result list.
func CloneAll(in []Fused) []Fused {
	if in == nil {
		return nil
	}
	out := make([]Fused, len(in))
	for i, f := range in {
		out[i] = f.Clone()
	}
	return out
}
