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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/budget/internal/config"
	"github.com/MrJamesThe3rd/budget/internal/database"
	budgetHttp "github.com/MrJamesThe3rd/budget/internal/http"
	importHandler "github.com/MrJamesThe3rd/budget/internal/http/importer"
	reportHandler "github.com/MrJamesThe3rd/budget/internal/http/report"
	sessionHandler "github.com/MrJamesThe3rd/budget/internal/http/session"
	txHandler "github.com/MrJamesThe3rd/budget/internal/http/transaction"
	"github.com/MrJamesThe3rd/budget/internal/importer"
	"github.com/MrJamesThe3rd/budget/internal/logger"
	"github.com/MrJamesThe3rd/budget/internal/metrics"
	"github.com/MrJamesThe3rd/budget/internal/session"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
	"github.com/MrJamesThe3rd/budget/internal/transaction/memory"
	txStore "github.com/MrJamesThe3rd/budget/internal/transaction/store"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("server failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	factory, closeStore, err := repositories(cfg, log, registry)
	if err != nil {
		return err
	}
	defer closeStore()

	var (
		sessions      = session.NewManager(factory)
		tokens        = session.NewTokens(cfg.Session.Secret, cfg.Session.TTL)
		importService = importer.NewService(log)
	)

	var (
		sessionH     = sessionHandler.NewHandler(sessions, tokens, m, log)
		transactionH = txHandler.NewHandler(sessions, m, log)
		importH      = importHandler.NewHandler(importService, sessions, m, log, cfg.Server.UploadMaxBytes)
		reportH      = reportHandler.NewHandler(sessions, log)
	)

	router := budgetHttp.New(budgetHttp.Options{
		Log:         log,
		Metrics:     m,
		Gatherer:    registry,
		Tokens:      tokens,
		CORSOrigins: cfg.Server.CORSOrigins,
		Timeout:     cfg.Server.Timeout,
	}, sessionH, transactionH, importH, reportH)

	go evictSessions(ctx, sessions, cfg.Session.TTL, m, log)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info("starting server",
			zap.String("addr", server.Addr),
			zap.String("storage", cfg.Storage.Driver),
		)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// repositories returns the ledger storage selected by STORAGE_DRIVER.
func repositories(cfg *config.Config, log *zap.Logger, registry *prometheus.Registry) (session.RepositoryFactory, func(), error) {
	if !cfg.UsesDatabase() {
		return func(string) transaction.Repository { return memory.New() }, func() {}, nil
	}

	driver, dsn := cfg.DatabaseDriver(), cfg.ConnectionString()

	if err := database.Migrate(driver, dsn); err != nil {
		return nil, nil, fmt.Errorf("migrating database: %w", err)
	}

	db, err := database.New(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	registry.MustRegister(collectors.NewDBStatsCollector(db, "budget"))

	store := txStore.New(db, database.Placeholder(driver))

	log.Info("database ready", zap.String("driver", string(driver)))

	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}

	return func(id string) transaction.Repository { return store.Ledger(id) }, closeDB, nil
}

// evictSessions drops sessions whose tokens can no longer be valid.
func evictSessions(ctx context.Context, sessions *session.Manager, ttl time.Duration, m *metrics.Metrics, log *zap.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Evict(ttl); n > 0 {
				log.Info("evicted idle sessions", zap.Int("count", n))
			}

			m.ActiveSessions.Set(float64(sessions.Len()))
		}
	}
}
