// Package regsearch is a cascading retrieval orchestrator for regulatory
// documents. It probes hybrid, section, graph, relational and metadata tiers
// in priority order until one returns enough results, then fuses what it got.
package regsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/regsearch/internal/app"
	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/regsearch/internal/usecase/health"
	raguc "github.com/kailas-cloud/regsearch/internal/usecase/rag"
)

// Client is the regsearch entry point. It is safe for concurrent use.
type Client struct {
	app *app.App
}

// New connects to every backend named in cfg and builds the search stack.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	o := newOptions(opts)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("regsearch: invalid config: %w", err)
	}
	a, err := app.New(ctx, cfg, o.logger)
	if err != nil {
		return nil, fmt.Errorf("regsearch: %w", err)
	}
	return &Client{app: a}, nil
}

// NewWithAdapters builds a client over caller-supplied tier adapters without
// connecting to anything. Connection sections of cfg are ignored.
func NewWithAdapters(cfg Config, adapters []Adapter, opts ...Option) (*Client, error) {
	if len(adapters) == 0 {
		return nil, errors.New("regsearch: at least one adapter is required")
	}
	o := newOptions(opts)
	cfg.ApplyDefaults()
	a, err := app.NewWithBackends(cfg, app.Backends{Adapters: adapters}, o.logger)
	if err != nil {
		return nil, fmt.Errorf("regsearch: %w", err)
	}
	return &Client{app: a}, nil
}

// Search runs the cascade for req. The only error is one wrapping ErrInvalidQuery.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	resp, err := c.app.Search.Search(ctx, req.Query, req.Filters.toInput(), req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}
	out := &SearchResponse{
		Results: make([]Result, len(resp.Results)),
		Total:   resp.Total,
		Took:    time.Duration(resp.TookMs) * time.Millisecond,
	}
	for i, r := range resp.Results {
		out.Results[i] = resultFromDomain(r)
	}
	return out, nil
}

// RetrieveContext searches for question and assembles numbered, cited passages.
func (c *Client) RetrieveContext(ctx context.Context, question string, filters Filters) (*Context, error) {
	rc, err := c.app.RAG.Retrieve(ctx, question, filters.toInput())
	if err != nil {
		return nil, err
	}
	return contextFromDomain(rc), nil
}

// Health checks every configured backend.
func (c *Client) Health(ctx context.Context) HealthReport {
	r := c.app.Health.Check(ctx)
	checks := make(map[string]bool, len(r.Checks))
	for name, res := range r.Checks {
		checks[name] = res == healthuc.CheckOK
	}
	return HealthReport{
		Healthy:     r.Status == healthuc.Healthy,
		Checks:      checks,
		CatalogSize: r.CatalogSize,
	}
}

// Close releases all connections.
func (c *Client) Close() error {
	return c.app.Close()
}

// Option configures a Client.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func resultFromDomain(r result.Fused) Result {
	return Result{
		DocumentID:        r.DocumentID,
		Title:             r.Title,
		Snippet:           r.Snippet,
		Score:             r.Score,
		ContributingTiers: append([]Tier(nil), r.ContributingTiers...),
		Citation:          r.Citation,
		EffectiveDate:     r.EffectiveDate,
		Jurisdiction:      r.Jurisdiction,
		DocType:           r.DocType,
	}
}

func contextFromDomain(rc raguc.Context) *Context {
	out := &Context{
		Question:  rc.Question,
		Text:      rc.Text,
		Passages:  make([]Passage, len(rc.Passages)),
		Sources:   make([]Source, len(rc.Sources)),
		Truncated: rc.Truncated,
		Took:      time.Duration(rc.TookMs) * time.Millisecond,
	}
	for i, p := range rc.Passages {
		out.Passages[i] = Passage(p)
	}
	for i, s := range rc.Sources {
		out.Sources[i] = Source(s)
	}
	return out
}
