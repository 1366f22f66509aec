// Package cascade runs tier probes in priority order until one is sufficient.
package cascade

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/regsearch/internal/domain"
	"github.com/kailas-cloud/regsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/regsearch/internal/domain/search/outcome"
	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
)

// Trace describes one cascade run.
type Trace struct {
	Mode        mode.Mode
	Transitions []Transition
	// Outcomes holds every outcome of record in completion order.
	// Fan-out probes abandoned after a sufficient sibling are not included.
	Outcomes []outcome.Outcome
	// Selected is what the fuser should merge, in tier priority order.
	Selected []outcome.Outcome
	// SatisfiedBy is the tier that ended the cascade, empty when exhausted.
	SatisfiedBy tier.ID
	Final       State
}

// Executor probes adapters according to Config.
type Executor struct {
	adapters []Adapter
	cfg      Config
	logger   *zap.Logger
}

// New creates an Executor. Adapters are ordered by tier priority; the last one
// is the last resort and runs even after the overall deadline has passed.
func New(adapters []Adapter, cfg Config, logger *zap.Logger) *Executor {
	sorted := slices.Clone(adapters)
	slices.SortStableFunc(sorted, func(a, b Adapter) int {
		return cmp.Compare(a.Tier().Priority(), b.Tier().Priority())
	})
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{adapters: sorted, cfg: cfg.withDefaults(), logger: logger}
}

// Tiers returns the configured tiers in probe order.
func (e *Executor) Tiers() []tier.ID {
	out := make([]tier.ID, len(e.adapters))
	for i, a := range e.adapters {
		out[i] = a.Tier()
	}
	return out
}

// Mode returns the effective mode after resolving Auto.
func (e *Executor) Mode() mode.Mode {
	if e.cfg.Mode != mode.Auto {
		return e.cfg.Mode
	}
	var total time.Duration
	for _, a := range e.adapters {
		total += e.budget(a.Tier())
	}
	if e.cfg.Deadline < total {
		return mode.FanOut
	}
	return mode.Sequential
}

func (e *Executor) budget(id tier.ID) time.Duration {
	if b, ok := e.cfg.Budgets[id]; ok {
		return b
	}
	return e.cfg.Deadline
}

func (e *Executor) threshold(q query.SearchQuery) int {
	if e.cfg.MinResults > 0 {
		return e.cfg.MinResults
	}
	return max(1, min(q.Limit(), 3))
}

// Run executes the cascade for q. It never returns an error: failures are
// recorded as outcomes and the trace says how the cascade ended.
func (e *Executor) Run(ctx context.Context, q query.SearchQuery) Trace {
	deadline := time.Now().Add(e.cfg.Deadline)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	r := &run{
		e:         e,
		q:         q,
		limit:     q.FetchSize(),
		threshold: e.threshold(q),
		deadline:  deadline,
		m:         newMachine(),
		logger:    e.logger.With(zap.String("query", q.Normalized())),
	}
	r.trace.Mode = e.Mode()

	var group map[tier.ID]bool
	if r.trace.Mode == mode.FanOut {
		group = make(map[tier.ID]bool, len(e.cfg.FanOut))
		for _, id := range e.cfg.FanOut {
			group[id] = true
		}
	}

	done := make(map[tier.ID]bool, len(e.adapters))
	for i, a := range e.adapters {
		if done[a.Tier()] {
			continue
		}
		if group[a.Tier()] {
			var members []Adapter
			for _, m := range e.adapters[i:] {
				if group[m.Tier()] {
					members = append(members, m)
					done[m.Tier()] = true
				}
			}
			if r.fanOut(ctx, members) {
				return r.finish()
			}
			continue
		}
		done[a.Tier()] = true
		if r.sequential(ctx, a) {
			return r.finish()
		}
	}

	r.exhaust()
	return r.finish()
}

type run struct {
	e         *Executor
	q         query.SearchQuery
	limit     int
	threshold int
	deadline  time.Time
	m         *machine
	trace     Trace
	logger    *zap.Logger
}

func (r *run) isLastResort(a Adapter) bool {
	return a.Tier() == r.e.adapters[len(r.e.adapters)-1].Tier()
}

func (r *run) sequential(ctx context.Context, a Adapter) bool {
	r.m.to(Probing, a.Tier())

	var o outcome.Outcome
	if !r.isLastResort(a) && !time.Now().Before(r.deadline) {
		o = outcome.New(a.Tier(), nil, 0, domain.TierError(context.DeadlineExceeded))
	} else {
		o = r.probe(ctx, a)
	}

	if r.settle(o) {
		r.trace.Selected = []outcome.Outcome{o}
		return true
	}
	return false
}

// fanOut probes members concurrently. The first sufficient outcome cancels
// the rest; probes still running at that point are abandoned.
func (r *run) fanOut(ctx context.Context, members []Adapter) bool {
	gctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan outcome.Outcome, len(members))
	for _, a := range members {
		r.m.to(Probing, a.Tier())
		go func(a Adapter) {
			ch <- r.probe(gctx, a)
		}(a)
	}

	var completed []outcome.Outcome
	for range members {
		o := <-ch
		completed = append(completed, o)
		if r.settle(o) {
			cancel()
			r.trace.Selected = withResults(completed)
			return true
		}
	}
	return false
}

// settle records o and moves the machine to Sufficient or Insufficient.
func (r *run) settle(o outcome.Outcome) bool {
	r.trace.Outcomes = append(r.trace.Outcomes, o)
	if o.Succeeded() && o.Len() >= r.threshold {
		r.m.to(Sufficient, o.Tier())
		r.trace.SatisfiedBy = o.Tier()
		return true
	}
	r.m.to(Insufficient, o.Tier())

	fields := []zap.Field{
		zap.String("tier", o.Tier().String()),
		zap.Int64("latency_ms", o.LatencyMs()),
		zap.Int("results", o.Len()),
		zap.Int("threshold", r.threshold),
	}
	if o.Succeeded() {
		r.logger.Info("Tier insufficient", fields...)
	} else {
		r.logger.Warn("Tier insufficient",
			append(fields, zap.String("kind", string(o.ErrorKind())), zap.Error(o.Err()))...)
	}
	return false
}

func (r *run) exhaust() {
	r.m.to(Exhausted, "")
	if r.trace.Mode == mode.FanOut {
		r.trace.Selected = withResults(r.trace.Outcomes)
		return
	}
	var best *outcome.Outcome
	for i := range r.trace.Outcomes {
		o := &r.trace.Outcomes[i]
		if !o.Succeeded() || o.Len() == 0 {
			continue
		}
		if best == nil || o.Len() > best.Len() ||
			(o.Len() == best.Len() && tier.Before(o.Tier(), best.Tier())) {
			best = o
		}
	}
	if best != nil {
		r.trace.Selected = []outcome.Outcome{*best}
	}
}

func (r *run) finish() Trace {
	r.trace.Transitions = r.m.transitions
	r.trace.Final = r.m.state
	return r.trace
}

// probe runs one adapter under min(budget, remaining deadline). The last-resort
// tier gets its full budget regardless of the overall deadline.
func (r *run) probe(parent context.Context, a Adapter) outcome.Outcome {
	budget := r.e.budget(a.Tier())

	var ctx context.Context
	var cancel context.CancelFunc
	if r.isLastResort(a) {
		ctx, cancel = detachDeadline(parent, budget)
	} else {
		budget = min(budget, time.Until(r.deadline))
		ctx, cancel = context.WithTimeout(parent, budget)
	}
	defer cancel()

	type reply struct {
		results []result.Raw
		err     error
	}
	ch := make(chan reply, 1)
	start := time.Now()
	go func() {
		res, err := a.Probe(ctx, r.q, r.limit)
		ch <- reply{res, err}
	}()

	var res []result.Raw
	var err error
	select {
	case rep := <-ch:
		res, err = rep.results, rep.err
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}
	case <-ctx.Done():
		err = ctx.Err()
	}
	latency := time.Since(start)

	return outcome.New(a.Tier(), res, latency, domain.TierError(err))
}

// detachDeadline derives a context that ignores parent's deadline but still
// follows explicit cancellation.
func detachDeadline(parent context.Context, budget time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), budget)
	stop := context.AfterFunc(parent, func() {
		if errors.Is(parent.Err(), context.Canceled) {
			cancel()
		}
	})
	return ctx, func() {
		stop()
		cancel()
	}
}

func withResults(outcomes []outcome.Outcome) []outcome.Outcome {
	var out []outcome.Outcome
	for _, o := range outcomes {
		if o.Succeeded() && o.Len() > 0 {
			out = append(out, o)
		}
	}
	slices.SortStableFunc(out, func(a, b outcome.Outcome) int {
		return cmp.Compare(a.Tier().Priority(), b.Tier().Priority())
	})
	return out
}
