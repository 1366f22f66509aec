package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/regsearch/internal/app"
	"github.com/kailas-cloud/regsearch/internal/config"
	logpkg "github.com/kailas-cloud/regsearch/internal/logger"
	chiTransport "github.com/kailas-cloud/regsearch/internal/transport/chi"
	"github.com/kailas-cloud/regsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting regsearch API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("search_mode", cfg.Search.Mode),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), time.Minute)
	a, err := app.New(startCtx, cfg, logger)
	cancelStart()
	if err != nil {
		logger.Fatal("Failed to initialize search stack", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("Error releasing resources", zap.Error(err))
		}
	}()

	server := chiTransport.NewServer(a.Search, a.RAG, a.Health, logger)
	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown; SIGHUP re-reads the catalog
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	for sig := range quit {
		if sig == syscall.SIGHUP {
			reloadCatalog(a, logger)
			continue
		}
		break
	}
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func reloadCatalog(a *app.App, logger *zap.Logger) {
	if a.Catalog == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.Catalog.Reload(ctx); err != nil {
		logger.Warn("Catalog reload failed, keeping previous snapshot", zap.Error(err))
		return
	}
	logger.Info("Catalog reloaded", zap.Int("documents", a.Catalog.Size()))
}
