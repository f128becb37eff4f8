package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"ZipTales/internal/config"
	"ZipTales/internal/credibility"
	"ZipTales/internal/domain"
	"ZipTales/internal/infrastructure/attestation"
	"ZipTales/internal/infrastructure/cache"
	"ZipTales/internal/infrastructure/httpapi"
	"ZipTales/internal/infrastructure/parser"
	"ZipTales/internal/infrastructure/scheduler"
	"ZipTales/internal/infrastructure/storage"
	"ZipTales/internal/logging"
	"ZipTales/internal/ports"
	"ZipTales/internal/scanner"
	"ZipTales/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	engine    *credibility.Engine
	scorer    *usecase.Scorer
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	server    *httpapi.Server
	closers   []func()
}

// BuildEngine loads the scoring tables. A weight-sum mismatch is logged, or fatal with StrictWeights.
func BuildEngine(cfg config.ScoringConfig, logger *slog.Logger) (*credibility.Engine, error) {
	reputation := credibility.DefaultReputationTable()
	if cfg.ReputationFile != "" {
		loaded, err := credibility.LoadReputationFile(cfg.ReputationFile)
		if err != nil {
			return nil, err
		}
		reputation = loaded
	}
	if cfg.DefaultReputation != nil {
		reputation = reputation.WithDefault(*cfg.DefaultReputation)
	}

	weights, err := credibility.LoadWeights(cfg.Weights)
	if err != nil {
		if cfg.StrictWeights {
			return nil, fmt.Errorf("load weights: %w", err)
		}
		logger.Warn("credibility weights do not sum to 1.0", "error", err)
	}
	heuristics := cfg.Heuristics

	logger.Info("credibility engine ready",
		"reputation_version", reputation.Version(),
		"reputation_entries", reputation.Len(),
		"reputation_default", reputation.Default(),
		"weights_total", weights.Sum())

	return credibility.NewEngine(credibility.Options{
		Reputation: reputation,
		Weights:    &weights,
		Heuristics: &heuristics,
	}), nil
}

// New builds the application. Storage, cache and attestation are optional and enabled by config.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	engine, err := BuildEngine(cfg.Scoring, baseLogger.With("component", "engine"))
	if err != nil {
		return nil, err
	}
	a.engine = engine

	checks := map[string]httpapi.HealthCheck{}

	var repository ports.ArticleRepository
	if cfg.Database.DSN != "" {
		pool, err := openPool(ctx, cfg.Database)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)

		repo := storage.NewPostgresRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
		repository = repo
		checks["postgres"] = pool.Ping
	}

	var resultCache ports.ResultCache
	if cfg.Redis.URL != "" {
		rc, err := cache.NewRedisCacheFromURL(cfg.Redis.URL, cfg.Redis.TTL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = rc.Close() })
		resultCache = rc
		checks["redis"] = rc.Ping
	}

	var attestor ports.Attestor
	if cfg.Attestation.URL != "" {
		attestor = attestation.NewClient(cfg.Attestation.URL, cfg.Attestation.APIKey,
			cfg.Attestation.Timeout, cfg.Attestation.CacheSize)
	}

	a.scorer = usecase.NewScorer(usecase.ScorerDeps{
		Engine:     engine,
		Repository: repository,
		Cache:      resultCache,
		Attestor:   attestor,
		Logger:     baseLogger.With("component", "scorer"),
	})

	var source ports.ArticleSource
	if len(cfg.Sites) > 0 {
		registry := scanner.NewRegistry(
			parser.NewFeedScanner(nil, baseLogger.With("component", "scanner.rss")),
			parser.NewPageScanner(nil, baseLogger.With("component", "scanner.html")),
		)
		source = parser.NewStrategySource(registry, cfg.Sites, baseLogger.With("component", "source"))
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:      source,
		Repository:  repository,
		Scorer:      a.scorer,
		BatchSize:   cfg.Scheduler.BatchSize,
		Concurrency: cfg.Scheduler.Concurrency,
		Logger:      baseLogger.With("component", "pipeline"),
	})

	var driver ports.Scheduler
	if repository != nil {
		driver = scheduler.NewIntervalScheduler(cfg.Scheduler.Interval, cfg.Scheduler.Location())
	}
	a.scheduler = usecase.NewScheduler(driver, a.pipeline, baseLogger.With("component", "scheduler"))

	a.server = httpapi.NewServer(cfg.Server.Addr, httpapi.ServerDeps{
		Scorer:    a.scorer,
		Logger:    baseLogger.With("component", "http"),
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
		Checks:    checks,
	})

	return a, nil
}

func openPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return pool, nil
}

// Engine exposes the configured scoring engine.
func (a *Application) Engine() *credibility.Engine {
	return a.engine
}

// Serve runs the HTTP server and the periodic ingest/rescore job until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Start() }()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
		a.logger.Info("shutting down")
	}

	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return errors.Join(
		serveErr,
		a.server.Shutdown(shutdownCtx),
		a.scheduler.Stop(shutdownCtx),
	)
}

// Rescore runs a single batch rescore over stored articles.
func (a *Application) Rescore(ctx context.Context) (domain.BatchReport, error) {
	return a.pipeline.Rescore(ctx)
}

// Ingest runs configured scanners once for articles published since the given time.
func (a *Application) Ingest(ctx context.Context, since time.Time) (domain.BatchReport, error) {
	return a.pipeline.Ingest(ctx, since)
}

// Close releases pooled connections.
func (a *Application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
