package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	_ "github.com/lib/pq"

	"TweetScanner/internal/api"
	"TweetScanner/internal/config"
	"TweetScanner/internal/domain"
	"TweetScanner/internal/infrastructure/browser"
	"TweetScanner/internal/infrastructure/gemini"
	"TweetScanner/internal/infrastructure/scheduler"
	"TweetScanner/internal/infrastructure/storage"
	"TweetScanner/internal/logging"
	"TweetScanner/internal/ports"
	"TweetScanner/internal/usecase"
	"TweetScanner/pkg/logger"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sql.DB
	router http.Handler
	scans  *usecase.ScheduledScans
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	repository := storage.NewPostgresRepository(db)
	if err := repository.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	provider := browser.New(cfg.Browser, logger.New("browser").Printf)

	var enricher ports.Enricher
	if cfg.Gemini.APIKey != "" {
		enricher = gemini.NewClient(cfg.Gemini)
	} else {
		baseLogger.Warn("no gemini api key configured, persisting raw text only")
	}

	ingestor := usecase.NewIngestor(usecase.IngestorDeps{
		Provider:   provider,
		Repository: repository,
		Enricher:   enricher,
		Logger:     baseLogger.With("component", "ingestor"),
		MaxPosts:   cfg.Ingest.MaxPosts,
		Pace:       cfg.Ingest.Pace(),
	})

	scans := usecase.NewScheduledScans(
		scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location()),
		ingestor,
		cfg.Scheduler.Accounts,
		domain.EnrichMode(cfg.Scheduler.Mode),
		baseLogger.With("component", "scheduler"),
	)

	return &Application{
		cfg:    cfg,
		logger: baseLogger,
		db:     db,
		router: api.NewRouter(ingestor, baseLogger.With("component", "api")),
		scans:  scans,
	}, nil
}

// Run starts recurring scans and serves HTTP until the server stops.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scans.Start(ctx); err != nil {
		return fmt.Errorf("start scheduled scans: %w", err)
	}
	defer func() { _ = a.scans.Stop(ctx) }()

	a.logger.Info("listening", "addr", a.cfg.HTTP.Addr)
	if err := http.ListenAndServe(a.cfg.HTTP.Addr, a.router); err != nil {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}

// Close releases the shared database pool.
func (a *Application) Close() error {
	return a.db.Close()
}
