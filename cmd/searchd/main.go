package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/talenthub/search-platform/internal/analytics"
	"github.com/talenthub/search-platform/internal/api"
	"github.com/talenthub/search-platform/internal/index"
	"github.com/talenthub/search-platform/internal/recommend"
	"github.com/talenthub/search-platform/internal/search"
	"github.com/talenthub/search-platform/pkg/config"
	"github.com/talenthub/search-platform/pkg/health"
	"github.com/talenthub/search-platform/pkg/kafka"
	"github.com/talenthub/search-platform/pkg/logger"
	"github.com/talenthub/search-platform/pkg/metrics"
	"github.com/talenthub/search-platform/pkg/middleware"
	"github.com/talenthub/search-platform/pkg/postgres"
	pkgredis "github.com/talenthub/search-platform/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults apply when omitted)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search platform", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Document store: Postgres when reachable, in-memory otherwise.
	var (
		store    index.Store
		pgClient *postgres.Client
	)
	pgClient, err = postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, using in-memory document store", "error", err)
		store = index.NewMemoryStore()
	} else {
		defer pgClient.Close()
		store = index.NewPostgresStore(pgClient)
		slog.Info("postgres document store ready", "host", cfg.Postgres.Host)
	}

	var (
		resultCache *search.ResultCache
		redisClient *pkgredis.Client
	)
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		resultCache = search.NewResultCache(redisClient, cfg.Redis.CacheTTL)
		slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
	recorder := analytics.NewRecorder(analyticsProducer, 10000)
	recorder.Start(ctx)
	defer recorder.Close()
	slog.Info("analytics recorder started", "topic", cfg.Kafka.Topics.AnalyticsEvents)

	aggregator := analytics.NewAggregator(nil)
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, analytics.HandleEvent(aggregator))
	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("analytics aggregator error", "error", err)
		}
	}()
	slog.Info("analytics aggregator started")

	indexerOpts := []index.Option{index.WithMetrics(m), index.WithTracker(recorder)}
	if resultCache != nil {
		indexerOpts = append(indexerOpts, index.WithWriteHook(func(ctx context.Context) {
			if err := resultCache.Invalidate(ctx); err != nil {
				slog.Warn("cache invalidation after write failed", "error", err)
			}
		}))
	}
	indexer := index.New(store, indexerOpts...)

	searchOpts := []search.ServiceOption{
		search.WithServiceMetrics(m),
		search.WithTracker(recorder),
	}
	if resultCache != nil {
		searchOpts = append(searchOpts, search.WithCache(resultCache))
	}

	var historyStore *analytics.Store
	if pgClient != nil {
		historyStore = analytics.NewStore(pgClient)
		searchOpts = append(searchOpts, search.WithHistory(historyStore))

		janitor := analytics.NewJanitor(historyStore, aggregator, cfg.Retention)
		if err := janitor.Start(); err != nil {
			slog.Error("failed to start retention janitor", "error", err)
			os.Exit(1)
		}
		defer janitor.Stop()
	}
	searcher := search.NewService(store, cfg.Search, searchOpts...)

	engine := recommend.NewEngine(
		recommend.NewHTTPProfileService(cfg.Recommend, recommend.WithBreakerMetrics(m)),
		recommend.NewHTTPJobMatcher(cfg.Recommend, recommend.WithBreakerMetrics(m)),
		recommend.NewHTTPCompanyMatcher(cfg.Recommend, recommend.WithBreakerMetrics(m)),
		recommend.WithMetrics(m),
		recommend.WithTracker(recorder),
	)

	checker := health.NewChecker()
	checker.Register("document_store", func(ctx context.Context) health.ComponentHealth {
		if pgClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "in-memory store"}
		}
		if err := pgClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := shutdownMetrics(sctx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	h := api.New(indexer, searcher).
		WithRecommendations(engine).
		WithCache(resultCache).
		WithHistory(historyStore).
		WithStats(aggregator.Stats)

	mux := h.Routes()
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search platform listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search platform stopped")
}
