package cascade

import (
	"time"

	"github.com/kailas-cloud/regsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
)

// DefaultDeadline bounds one whole cascade.
const DefaultDeadline = 500 * time.Millisecond

// DefaultBudgets returns the per-tier latency budgets.
func DefaultBudgets() map[tier.ID]time.Duration {
	return map[tier.ID]time.Duration{
		tier.Hybrid:     500 * time.Millisecond,
		tier.Section:    400 * time.Millisecond,
		tier.Graph:      200 * time.Millisecond,
		tier.Relational: 50 * time.Millisecond,
		tier.Metadata:   20 * time.Millisecond,
	}
}

// DefaultFanOut returns the tiers probed concurrently in fan-out mode.
func DefaultFanOut() []tier.ID {
	return []tier.ID{tier.Graph, tier.Relational, tier.Metadata}
}

// Config controls cascade execution.
type Config struct {
	// Deadline bounds the whole cascade. A shorter caller deadline wins.
	Deadline time.Duration
	// Budgets are per-tier timeouts; missing tiers use DefaultBudgets.
	Budgets map[tier.ID]time.Duration
	// MinResults overrides the sufficiency threshold min(limit, 3) when positive.
	MinResults int
	Mode       mode.Mode
	FanOut     []tier.ID
}

// DefaultConfig returns a sequential cascade with default budgets.
func DefaultConfig() Config {
	return Config{
		Deadline: DefaultDeadline,
		Budgets:  DefaultBudgets(),
		Mode:     mode.Sequential,
		FanOut:   DefaultFanOut(),
	}
}

func (c Config) withDefaults() Config {
	if c.Deadline <= 0 {
		c.Deadline = DefaultDeadline
	}
	budgets := DefaultBudgets()
	for id, b := range c.Budgets {
		if b > 0 {
			budgets[id] = b
		}
	}
	c.Budgets = budgets
	if !c.Mode.IsValid() {
		c.Mode = mode.Sequential
	}
	if len(c.FanOut) == 0 {
		c.FanOut = DefaultFanOut()
	}
	return c
}
