// Package search is the single retrieval entry point: normalize, expand,
// consult the cache, run the cascade, fuse, page and record telemetry.
package search

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
	"github.com/kailas-cloud/regsearch/internal/repository/respcache"
	"github.com/kailas-cloud/regsearch/internal/telemetry"
	"github.com/kailas-cloud/regsearch/internal/usecase/cascade"
	qnorm "github.com/kailas-cloud/regsearch/internal/usecase/query"
)

// Response is one page of fused results.
type Response struct {
	Results []result.Fused
	// Total is the fused list length before paging.
	Total  int
	TookMs int64
}

// Service orchestrates a search.
type Service struct {
	exec     Executor
	fuser    Fuser
	cache    Cache
	expander Expander
	sink     telemetry.Sink
	logger   *zap.Logger
	group    singleflight.Group
}

// New creates a search service. A nil sink discards telemetry.
func New(
	exec Executor, fuser Fuser, cache Cache, expander Expander,
	sink telemetry.Sink, logger *zap.Logger,
) *Service {
	if sink == nil {
		sink = telemetry.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		exec:     exec,
		fuser:    fuser,
		cache:    cache,
		expander: expander,
		sink:     sink,
		logger:   logger,
	}
}

type computed struct {
	entry  respcache.Entry
	trace  cascade.Trace
	cached bool
}

// Search returns one page of results for raw. The only error it returns
// wraps domain.ErrInvalidQuery; backend failures degrade the result instead.
func (s *Service) Search(
	ctx context.Context, raw string, filters query.FilterInput, limit, offset int,
) (Response, error) {
	start := time.Now()

	rec := telemetry.Record{
		RequestID: telemetry.NewRequestID(),
		Timestamp: start.UTC(),
	}

	sq, err := qnorm.Normalize(raw, filters, limit, offset)
	if err != nil {
		rec.FinalState = telemetry.StateInvalid
		rec.TookMs = time.Since(start).Milliseconds()
		s.sink.Emit(ctx, rec)
		return Response{}, err //nolint:wrapcheck // InvalidQueryError is the public contract
	}
	sq = s.expander.Expand(sq)
	key := respcache.Key(sq)
	rec.QueryHash = key

	if e, ok := s.cache.Get(ctx, key); ok {
		rec.CacheHit = true
		return s.respond(ctx, start, e, &rec), nil
	}

	// ran is only set in the goroutine that executes the flight
	ran := false
	v, _, shared := s.group.Do(key, func() (any, error) {
		ran = true
		// a flight for this key may have finished since the lookup above
		if e, ok := s.cache.Get(ctx, key); ok {
			return computed{entry: e, cached: true}, nil
		}
		return s.compute(ctx, sq, key), nil
	})
	c := v.(computed) //nolint:forcetypeassert // only computed is stored
	rec.Shared = shared
	if c.cached {
		rec.CacheHit = true
		return s.respond(ctx, start, c.entry, &rec), nil
	}
	rec.Mode = c.trace.Mode
	if !ran {
		// the cascade is reported once, by the caller that ran it
		rec.Coalesced = true
		return s.respond(ctx, start, c.entry, &rec), nil
	}
	rec.SatisfiedBy = c.trace.SatisfiedBy
	rec.FinalState = string(c.trace.Final)
	rec.Tiers = tierRecords(c.trace)

	return s.respond(ctx, start, c.entry, &rec), nil
}

// compute runs the cascade for a cache miss. It is shared by concurrent
// callers with the same key, so it outlives the first caller's cancellation
// but keeps its deadline.
func (s *Service) compute(ctx context.Context, sq query.SearchQuery, key string) computed {
	cctx := context.WithoutCancel(ctx)
	if d, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		cctx, cancel = context.WithDeadline(cctx, d)
		defer cancel()
	}

	trace := s.exec.Run(cctx, sq)
	fused := s.fuser.Fuse(sq, trace.Selected)

	total := len(fused)
	from := min(sq.Offset(), total)
	to := min(from+sq.Limit(), total)
	page := fused[from:to]
	if page == nil {
		page = []result.Fused{}
	}

	s.logger.Debug("Cascade finished",
		zap.String("query", sq.Normalized()),
		zap.String("mode", string(trace.Mode)),
		zap.String("final_state", string(trace.Final)),
		zap.String("satisfied_by", string(trace.SatisfiedBy)),
		zap.Int("total", total),
	)

	stored := s.cache.Add(cctx, key, respcache.Entry{Results: page, Total: total})
	return computed{entry: stored, trace: trace}
}

func (s *Service) respond(ctx context.Context, start time.Time, e respcache.Entry, rec *telemetry.Record) Response {
	results := e.Results
	if results == nil {
		results = []result.Fused{}
	}
	took := time.Since(start).Milliseconds()

	rec.ResultCount = len(results)
	rec.Total = e.Total
	rec.TookMs = took
	s.sink.Emit(ctx, *rec)

	return Response{Results: result.CloneAll(results), Total: e.Total, TookMs: took}
}

func tierRecords(t cascade.Trace) []telemetry.TierRecord {
	out := make([]telemetry.TierRecord, 0, len(t.Outcomes))
	for _, o := range t.Outcomes {
		out = append(out, telemetry.TierRecord{
			Tier:        o.Tier(),
			LatencyMs:   o.LatencyMs(),
			Succeeded:   o.Succeeded(),
			ErrorKind:   string(o.ErrorKind()),
			ResultCount: o.Len(),
		})
	}
	return out
}
