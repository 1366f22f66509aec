package app

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/regsearch/internal/config"
	"github.com/kailas-cloud/regsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
	"github.com/kailas-cloud/regsearch/internal/usecase/cascade"
	"github.com/kailas-cloud/regsearch/internal/usecase/fusion"
)

func cascadeConfig(sc config.SearchConfig) (cascade.Config, error) {
	m, err := mode.Parse(sc.Mode)
	if err != nil {
		return cascade.Config{}, err
	}
	out := cascade.Config{
		Deadline:   time.Duration(sc.DeadlineMs) * time.Millisecond,
		Budgets:    make(map[tier.ID]time.Duration, len(sc.BudgetsMs)),
		MinResults: sc.MinResults,
		Mode:       m,
	}
	for name, ms := range sc.BudgetsMs {
		id, err := tier.Parse(name)
		if err != nil {
			return cascade.Config{}, fmt.Errorf("budgets: %w", err)
		}
		out.Budgets[id] = time.Duration(ms) * time.Millisecond
	}
	for _, name := range sc.FanOut {
		id, err := tier.Parse(name)
		if err != nil {
			return cascade.Config{}, fmt.Errorf("fanout: %w", err)
		}
		out.FanOut = append(out.FanOut, id)
	}
	return out, nil
}

// fusionConfig assumes tier names were validated with the config.
func fusionConfig(sc config.SearchConfig) fusion.Config {
	out := fusion.Config{Weights: make(map[tier.ID]float64, len(sc.Weights)), Boost: sc.Boost}
	if out.Boost == 0 {
		out.Boost = fusion.DefaultBoost
	}
	for name, w := range sc.Weights {
		out.Weights[tier.ID(name)] = w
	}
	return out
}
