// Package app wires configuration into a running search stack.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/regsearch/internal/config"
	dbBadger "github.com/kailas-cloud/regsearch/internal/db/badger"
	dbNeo4j "github.com/kailas-cloud/regsearch/internal/db/neo4j"
	dbPostgres "github.com/kailas-cloud/regsearch/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/regsearch/internal/db/redis"
	"github.com/kailas-cloud/regsearch/internal/domain"
	"github.com/kailas-cloud/regsearch/internal/metrics"
	"github.com/kailas-cloud/regsearch/internal/repository/embcache"
	"github.com/kailas-cloud/regsearch/internal/repository/respcache"
	"github.com/kailas-cloud/regsearch/internal/repository/tier/graph"
	"github.com/kailas-cloud/regsearch/internal/repository/tier/hybrid"
	"github.com/kailas-cloud/regsearch/internal/repository/tier/metadata"
	"github.com/kailas-cloud/regsearch/internal/repository/tier/relational"
	"github.com/kailas-cloud/regsearch/internal/repository/tier/section"
	"github.com/kailas-cloud/regsearch/internal/telemetry"
	"github.com/kailas-cloud/regsearch/internal/transport/openai"
	"github.com/kailas-cloud/regsearch/internal/usecase/cascade"
	"github.com/kailas-cloud/regsearch/internal/usecase/fusion"
	healthuc "github.com/kailas-cloud/regsearch/internal/usecase/health"
	"github.com/kailas-cloud/regsearch/internal/usecase/query"
	raguc "github.com/kailas-cloud/regsearch/internal/usecase/rag"
	searchuc "github.com/kailas-cloud/regsearch/internal/usecase/search"
)

// App holds the wired services and the resources they own.
type App struct {
	Search *searchuc.Service
	RAG    *raguc.Service
	Health *healthuc.Service
	// Catalog is nil when no metadata adapter is configured.
	Catalog *metadata.Adapter

	closers []func() error
	logger  *zap.Logger
}

// Backends are optional collaborators supplied by the caller instead of being built from config.
type Backends struct {
	Adapters []cascade.Adapter
	Shared   respcache.Shared
	Pingers  map[string]healthuc.Pinger
	Embedder healthuc.EmbeddingChecker
	Sink     telemetry.Sink
}

// New connects every configured backend and builds the services.
// Postgres, Neo4j, the catalog directory and embeddings are optional; Redis is required.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.RegisterSearchMetrics()
	metrics.RegisterEmbeddingMetrics()

	a := &App{logger: logger}
	b, err := a.connect(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if err := a.assemble(cfg, b); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// NewWithBackends builds the services over caller-supplied adapters without
// opening any connection. The response cache stays in-process unless b.Shared is set.
func NewWithBackends(cfg config.Config, b Backends, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(b.Adapters) == 0 {
		return nil, errors.New("at least one tier adapter is required")
	}
	a := &App{logger: logger}
	if err := a.assemble(cfg, b); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) connect(ctx context.Context, cfg config.Config) (Backends, error) {
	b := Backends{Pingers: make(map[string]healthuc.Pinger)}

	redisStore, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Redis.Addrs,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return b, fmt.Errorf("create redis store: %w", err)
	}
	a.onClose(func() error { redisStore.Close(); return nil })

	readiness := time.Duration(cfg.Redis.ReadinessTimeout) * time.Second
	if err := redisStore.WaitForReady(ctx, readiness); err != nil {
		return b, fmt.Errorf("redis not ready: %w", err)
	}
	a.logger.Info("Redis is ready", zap.Strings("addrs", cfg.Redis.Addrs))
	b.Pingers["redis"] = redisStore
	if cfg.Cache.Shared {
		b.Shared = redisStore
	}

	var embedder domain.Embedder
	if cfg.Embedding.Model != "" {
		provider := openai.NewEmbedder(&openai.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Timeout:    time.Duration(cfg.Embedding.TimeoutMs) * time.Millisecond,
			Logger:     a.logger,
		})
		cached := embcache.New(provider, redisStore, cfg.Embedding.Model,
			time.Duration(cfg.Embedding.CacheTTLSec)*time.Second, metrics.EmbeddingCacheTotal, a.logger)
		b.Embedder = cached
		embedder = cached
		if cfg.Embedding.QueryInstruction != "" {
			embedder = domain.NewInstructionEmbedder(cached, cfg.Embedding.QueryInstruction)
		}
		a.logger.Info("Query embeddings enabled",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
		)
	} else {
		a.logger.Warn("No embedding model configured, hybrid tier runs lexical-only")
	}

	b.Adapters = append(b.Adapters,
		hybrid.New(redisStore, embedder, cfg.Redis.HybridIndex, a.logger),
		section.New(redisStore, cfg.Redis.SectionIndex),
	)

	if cfg.Neo4j.URI != "" {
		neo, err := dbNeo4j.NewStore(ctx, dbNeo4j.Config{
			URI:           cfg.Neo4j.URI,
			Username:      cfg.Neo4j.Username,
			Password:      cfg.Neo4j.Password,
			Database:      cfg.Neo4j.Database,
			FulltextIndex: cfg.Neo4j.FulltextIndex,
		})
		if err != nil {
			return b, fmt.Errorf("create neo4j store: %w", err)
		}
		a.onClose(func() error { return neo.Close(context.Background()) })
		b.Pingers["neo4j"] = neo
		b.Adapters = append(b.Adapters, graph.New(neo, graph.Config{RelationshipBoost: cfg.Neo4j.RelationshipBoost}))
	}

	if cfg.Postgres.DSN != "" {
		pg, err := dbPostgres.NewStore(ctx, dbPostgres.Config{
			DSN:      cfg.Postgres.DSN,
			Table:    cfg.Postgres.Table,
			MaxConns: cfg.Postgres.MaxConns,
			MinConns: cfg.Postgres.MinConns,
		})
		if err != nil {
			return b, fmt.Errorf("create postgres store: %w", err)
		}
		a.onClose(func() error { pg.Close(); return nil })
		b.Pingers["postgres"] = pg
		b.Adapters = append(b.Adapters, relational.New(pg))
	}

	catalog, err := a.openCatalog(ctx, cfg.Catalog)
	if err != nil {
		return b, err
	}
	b.Adapters = append(b.Adapters, catalog)

	sink, err := a.telemetrySink(cfg.Telemetry)
	if err != nil {
		return b, err
	}
	b.Sink = sink

	return b, nil
}

func (a *App) openCatalog(ctx context.Context, cfg config.CatalogConfig) (*metadata.Adapter, error) {
	if cfg.Path == "" {
		a.logger.Warn("No catalog path configured, metadata tier starts empty")
		return metadata.New(nil, a.logger), nil
	}
	store, err := dbBadger.Open(cfg.Path, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	a.onClose(store.Close)

	adapter, err := metadata.Load(ctx, store, a.logger)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	a.logger.Info("Catalog loaded", zap.String("path", cfg.Path), zap.Int("documents", adapter.Size()))
	return adapter, nil
}

func (a *App) telemetrySink(cfg config.TelemetryConfig) (telemetry.Sink, error) {
	sinks := telemetry.Multi{telemetry.MetricsSink{}}
	if cfg.Log {
		sinks = append(sinks, telemetry.NewLogSink(a.logger))
	}
	if len(cfg.Kafka.Brokers) > 0 {
		k, err := telemetry.NewKafkaSink(telemetry.KafkaConfig{
			Brokers:  cfg.Kafka.Brokers,
			Topic:    cfg.Kafka.Topic,
			ClientID: cfg.Kafka.ClientID,
			Version:  cfg.Kafka.Version,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("create kafka telemetry sink: %w", err)
		}
		a.onClose(k.Close)
		sinks = append(sinks, k)
	}
	return sinks, nil
}

func (a *App) assemble(cfg config.Config, b Backends) error {
	cascadeCfg, err := cascadeConfig(cfg.Search)
	if err != nil {
		return err
	}

	synonyms := query.DefaultSynonyms()
	if cfg.Search.SynonymsFile != "" {
		synonyms, err = query.LoadSynonyms(cfg.Search.SynonymsFile)
		if err != nil {
			return fmt.Errorf("load synonyms: %w", err)
		}
	}

	cacheOpts := []respcache.Option{respcache.WithLogger(a.logger)}
	if b.Shared != nil {
		cacheOpts = append(cacheOpts, respcache.WithShared(b.Shared))
	}
	cache := respcache.New(respcache.Config{
		TTL:      time.Duration(cfg.Cache.TTLSec) * time.Second,
		Capacity: cfg.Cache.Capacity,
	}, cacheOpts...)

	exec := cascade.New(b.Adapters, cascadeCfg, a.logger)
	a.logger.Info("Cascade configured",
		zap.Stringers("tiers", exec.Tiers()),
		zap.String("mode", string(exec.Mode())),
		zap.Duration("deadline", cascadeCfg.Deadline),
	)

	a.Search = searchuc.New(exec, fusion.New(fusionConfig(cfg.Search)), cache,
		query.NewExpander(synonyms), b.Sink, a.logger)
	a.RAG = raguc.New(a.Search, raguc.Config{
		Limit:    cfg.RAG.Limit,
		MinScore: cfg.RAG.MinScore,
		MaxChars: cfg.RAG.MaxChars,
	}, a.logger)

	var sizer healthuc.CatalogSizer
	for _, ad := range b.Adapters {
		if m, ok := ad.(*metadata.Adapter); ok {
			a.Catalog = m
			sizer = m
		}
	}
	a.Health = healthuc.New(b.Pingers, b.Embedder, sizer)
	return nil
}

func (a *App) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
