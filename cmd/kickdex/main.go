package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kickdex/internal/backend/opensearch"
	"github.com/kailas-cloud/kickdex/internal/config"
	"github.com/kailas-cloud/kickdex/internal/db"
	dbRedis "github.com/kailas-cloud/kickdex/internal/db/redis"
	"github.com/kailas-cloud/kickdex/internal/domain/job"
	logpkg "github.com/kailas-cloud/kickdex/internal/logger"
	"github.com/kailas-cloud/kickdex/internal/metrics"
	"github.com/kailas-cloud/kickdex/internal/registry"
	batchesrepo "github.com/kailas-cloud/kickdex/internal/repository/batches"
	"github.com/kailas-cloud/kickdex/internal/repository/embcache"
	queuerepo "github.com/kailas-cloud/kickdex/internal/repository/queue"
	sourcerepo "github.com/kailas-cloud/kickdex/internal/repository/source"
	chiTransport "github.com/kailas-cloud/kickdex/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/kickdex/internal/transport/openai"
	drainuc "github.com/kailas-cloud/kickdex/internal/usecase/drain"
	healthuc "github.com/kailas-cloud/kickdex/internal/usecase/health"
	"github.com/kailas-cloud/kickdex/internal/usecase/indexer"
	jobsuc "github.com/kailas-cloud/kickdex/internal/usecase/jobs"
	"github.com/kailas-cloud/kickdex/internal/usecase/reindex"
	searchuc "github.com/kailas-cloud/kickdex/internal/usecase/search"
	"github.com/kailas-cloud/kickdex/internal/version"
	"github.com/kailas-cloud/kickdex/internal/worker"
)

func main() {
	env := config.GetEnv()

	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level, zap.String("service", "kickdex"))
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting kickdex",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Strings("search_addrs", cfg.Search.Addrs),
		zap.Int("models", len(cfg.Models)),
	)

	metrics.Register()

	var store db.Store
	store, err = dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Database.Addrs,
		Username:   cfg.Database.Username,
		Password:   cfg.Database.Password,
		DB:         cfg.Database.DB,
		Standalone: cfg.Database.Standalone,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	backend, err := opensearch.New(opensearch.Config{
		Addrs:      cfg.Search.Addrs,
		Username:   cfg.Search.Username,
		Password:   cfg.Search.Password,
		MaxRetries: cfg.Search.MaxRetries,
	})
	if err != nil {
		logger.Fatal("Failed to create search backend client", zap.Error(err))
	}

	defs := make([]registry.Definition, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		defs = append(defs, registry.Definition{Model: m.Name, Index: m.Index, Options: m.IndexOptions()})
	}
	indices, err := registry.New(defs, cfg.Search.IndexCacheSize)
	if err != nil {
		logger.Fatal("Invalid model definitions", zap.Error(err))
	}

	// Pass nil interfaces (not typed nil pointers) when no embedding provider is configured.
	var (
		queryEmbedder searchuc.Embedder
		embChecker    healthuc.EmbeddingChecker
	)
	if cfg.Embedding.Enabled() {
		base, cached := buildEmbedder(cfg.Embedding, store, logger)
		queryEmbedder, embChecker = cached, base
		logger.Info("Query embedder configured",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	}

	searchSvc := searchuc.New(backend, indices, queryEmbedder, searchuc.Settings{
		Timeout:       time.Duration(cfg.Search.TimeoutSec) * time.Second,
		SearchTimeout: time.Duration(cfg.Search.SearchTimeoutSec) * time.Second,
	}, logger)

	queue := queuerepo.New(store)
	batches := batchesrepo.New(store)
	records := sourcerepo.New(store)
	aggregator := indexer.New(backend, logger)

	// The pool and the job runner depend on each other through the translator; runner is bound below.
	var runner *jobsuc.Runner
	pool := worker.NewPool(worker.RunnerFunc(func(ctx context.Context, j job.Job) error {
		return runner.Run(ctx, j)
	}), cfg.Worker.Concurrency, cfg.Worker.Buffer, logger)

	translator := reindex.New(aggregator, queue, pool, batches, logger)
	drainSvc := drainuc.New(indices, queue, pool, translator, records, logger)
	runner = jobsuc.New(indices, records, translator, drainSvc, logger)

	poolCtx, stopPool := context.WithCancel(context.Background())
	defer stopPool()
	pool.Start(poolCtx)

	scheduler := worker.NewScheduler(pool, logger,
		worker.WithEnqueueTimeout(time.Duration(cfg.Worker.EnqueueTimeoutSec)*time.Second))
	for _, model := range cfg.QueuedModels() {
		if err := scheduler.ScheduleDrain(cfg.Worker.DrainSchedule, model); err != nil {
			logger.Fatal("Failed to schedule queue drain", zap.String("model", model), zap.Error(err))
		}
	}
	scheduler.Start()

	healthSvc := healthuc.New(backend, store, embChecker)

	server := chiTransport.NewServer(chiTransport.Deps{
		Search:  searchSvc,
		Indices: indices,
		Reindex: translator,
		Records: records,
		Queue:   queue,
		Drain:   drainSvc,
		Health:  healthSvc,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.APIKeyMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	// stop accepting work first, then let queued jobs finish
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during HTTP shutdown", zap.Error(err))
	}
	scheduler.Stop()
	if err := pool.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping worker pool", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the query embedder chain: OpenAI -> cache. The base is returned for health
// checks.
func buildEmbedder(
	cfg config.EmbeddingConfig, store db.KVStore, logger *zap.Logger,
) (*openaiEmb.Embedder, *embcache.CachedEmbedder) {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Timeout:    time.Duration(cfg.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	cached, err := embcache.New(base, store, embcache.Options{
		TTL:       time.Duration(cfg.CacheTTLSec) * time.Second,
		LocalSize: cfg.LocalCacheSize,
		Namespace: cfg.Model,
	}, metrics.EmbeddingCacheTotal, logger)
	if err != nil {
		logger.Fatal("Failed to create embedding cache", zap.Error(err))
	}
	return base, cached
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logpkg.FromContext(r.Context(), logger).Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternal,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits one log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", chi.RouteContext(r.Context()).RoutePattern()),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
