package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"growthscore_backend/internal/email"
	"growthscore_backend/internal/events"
	"growthscore_backend/internal/followup"
	apphttp "growthscore_backend/internal/http"
	"growthscore_backend/internal/http/router"
	"growthscore_backend/internal/leads"
	"growthscore_backend/internal/payments"
	"growthscore_backend/internal/report"
	"growthscore_backend/internal/scheduler"
	"growthscore_backend/migrations"
	"growthscore_backend/platform/config"
	"growthscore_backend/platform/db"
	"growthscore_backend/platform/logger"
	"growthscore_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS, ".")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	generator, err := report.NewGeminiGenerator(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize report generator", "error", err)
		panic("failed to initialize report generator: " + err.Error())
	}

	reportCache, err := report.NewRedisCache(cfg)
	if err != nil {
		log.Error("failed to initialize report cache", "error", err)
		panic("failed to initialize report cache: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	leadsModule := leads.NewModule(pool, eventBus, sender, cfg, val, log)
	leadsModule.RegisterHandlers(eventBus)

	paymentsModule := payments.NewModule(leadsModule.Repository(), eventBus, cfg, val, log)

	reportModule := report.NewModule(leadsModule.Repository(), generator, reportCache, eventBus, cfg, val, log)
	reportModule.RegisterHandlers(eventBus)

	// With a task queue configured, a fresh send schedules its successor
	// precisely instead of waiting for the next dispatcher pass.
	var ticker followup.TickScheduler
	if cfg.RedisURL != "" {
		tickClient, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize follow-up tick client", "error", err)
			panic("failed to initialize follow-up tick client: " + err.Error())
		}
		defer func() { _ = tickClient.Close() }()
		ticker = tickClient
	}

	followUpModule := followup.NewModule(leadsModule.Repository(), sender, eventBus, ticker, cfg, log)
	followUpModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			paymentsModule,
			reportModule,
			followUpModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
