// Package fusion merges per-tier results into one ranked list with comparable scores.
package fusion

import (
	"cmp"
	"slices"
	"strings"

	"github.com/kailas-cloud/regsearch/internal/domain/search/outcome"
	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
)

// DefaultBoost multiplies the score of results whose snippet contains an exact query term.
const DefaultBoost = 1.2

// Config holds fusion weights and the exact-match boost.
type Config struct {
	Weights map[tier.ID]float64
	Boost   float64
}

// DefaultConfig returns weights that favour the richer tiers.
func DefaultConfig() Config {
	return Config{
		Weights: map[tier.ID]float64{
			tier.Hybrid:     1.0,
			tier.Section:    0.8,
			tier.Graph:      0.4,
			tier.Relational: 0.4,
			tier.Metadata:   0.2,
		},
		Boost: DefaultBoost,
	}
}

// Fuser merges tier outcomes.
type Fuser struct {
	weights map[tier.ID]float64
	boost   float64
}

// New creates a Fuser. Missing weights fall back to the defaults and a zero
// weight drops the tier from scoring; negative weights are ignored.
// A boost below 1 disables boosting.
func New(cfg Config) *Fuser {
	def := DefaultConfig()
	weights := make(map[tier.ID]float64, len(def.Weights))
	for id, w := range def.Weights {
		weights[id] = w
	}
	for id, w := range cfg.Weights {
		if w >= 0 {
			weights[id] = w
		}
	}
	boost := cfg.Boost
	if boost < 1 {
		boost = 1
	}
	return &Fuser{weights: weights, boost: boost}
}

type candidate struct {
	best    result.Raw
	scores  map[tier.ID]float64
	tiers   []tier.ID
	primary tier.ID
}

// Fuse normalizes each outcome's scores to [0,1], merges hits that share a
// document id, and returns them ordered by fused score. Failed outcomes are ignored.
//
// A document's score is the weighted mean of its normalized scores over the
// tiers that returned results, so a hit from a tier that found nothing else
// is not penalized for the other tiers' silence.
func (f *Fuser) Fuse(q query.SearchQuery, outcomes []outcome.Outcome) []result.Fused {
	byDoc := make(map[string]*candidate)
	order := make([]string, 0)
	var participating []tier.ID

	for _, o := range outcomes {
		if !o.Succeeded() || o.Len() == 0 {
			continue
		}
		if !slices.Contains(participating, o.Tier()) {
			participating = append(participating, o.Tier())
		}
		raws := o.Results()
		norm := minMax(raws)
		for i, r := range raws {
			c, ok := byDoc[r.DocumentID]
			if !ok {
				c = &candidate{best: r, scores: make(map[tier.ID]float64), primary: o.Tier()}
				byDoc[r.DocumentID] = c
				order = append(order, r.DocumentID)
			}
			if prev, seen := c.scores[o.Tier()]; !seen || norm[i] > prev {
				c.scores[o.Tier()] = norm[i]
			}
			if !slices.Contains(c.tiers, o.Tier()) {
				c.tiers = append(c.tiers, o.Tier())
			}
			if tier.Before(o.Tier(), c.primary) {
				c.best = r
				c.primary = o.Tier()
			}
		}
	}

	slices.SortFunc(participating, func(a, b tier.ID) int { return cmp.Compare(a.Priority(), b.Priority()) })
	var weightSum float64
	for _, id := range participating {
		weightSum += f.weight(id)
	}

	exact := q.ExactTerms()
	out := make([]result.Fused, 0, len(order))
	for _, id := range order {
		c := byDoc[id]
		slices.SortFunc(c.tiers, func(a, b tier.ID) int { return cmp.Compare(a.Priority(), b.Priority()) })
		var sum float64
		for _, t := range c.tiers {
			sum += f.weight(t) * c.scores[t]
		}
		score := 0.0
		if weightSum > 0 {
			score = sum / weightSum
		}
		if f.boost > 1 && containsExactTerm(c.best.Snippet, exact) {
			score = min(score*f.boost, 1)
		}
		out = append(out, result.Fused{
			DocumentID:        c.best.DocumentID,
			Title:             c.best.Title,
			Snippet:           c.best.Snippet,
			Score:             score,
			ContributingTiers: c.tiers,
			Citation:          c.best.Citation,
			EffectiveDate:     c.best.EffectiveDate,
			Jurisdiction:      c.best.Jurisdiction,
			DocType:           c.best.DocType,
		})
	}

	slices.SortFunc(out, compare)
	return out
}

func (f *Fuser) weight(id tier.ID) float64 {
	if w, ok := f.weights[id]; ok {
		return w
	}
	return 0
}

// compare orders by score desc, then the best contributing tier, then newer
// effective date, then document id. The order is total, so fusion is deterministic.
func compare(a, b result.Fused) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := cmp.Compare(bestPriority(a), bestPriority(b)); c != 0 {
		return c
	}
	if c := b.EffectiveDate.Compare(a.EffectiveDate); c != 0 {
		return c
	}
	return strings.Compare(a.DocumentID, b.DocumentID)
}

func bestPriority(f result.Fused) int {
	if len(f.ContributingTiers) == 0 {
		return tier.ID("").Priority()
	}
	return f.ContributingTiers[0].Priority()
}
