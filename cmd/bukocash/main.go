package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"bukocash/internal/amqp"
	"bukocash/internal/config"
	"bukocash/internal/core"
	apphttp "bukocash/internal/http"
	applog "bukocash/internal/log"
	"bukocash/internal/mirror"
	"bukocash/internal/storage"
	"bukocash/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting bukocash")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize SQLite repository and load the last persisted snapshot
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	snapshot, err := repo.LoadSnapshot(ctx)
	if err != nil {
		logger.Error("Failed to load snapshot", "error", err)
		os.Exit(1)
	}
	logger.Info("Snapshot loaded", "version", snapshot.Version,
		"wallets", len(snapshot.Wallets), "transactions", len(snapshot.Transactions))

	// Mirror wiring. The syncer's completion callback needs the store, which
	// in turn takes the syncer as its notifier, so the store variable is
	// declared first and captured.
	var st *store.Store
	var syncer *mirror.Syncer

	if cfg.MirrorEnabled {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, mirror disabled", "error", err)
		} else {
			defer amqpClient.Close()
			syncer = mirror.New(amqpClient, func(ctx context.Context, ts time.Time) {
				st.MarkSyncComplete(ctx, ts)
			})
			logger.Info("Mirror enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	opts := []store.Option{store.WithPersister(repo)}
	if syncer != nil {
		opts = append(opts, store.WithNotifier(syncer))
	}
	st = store.New(snapshot, opts...)

	if err := st.CheckIntegrity(); err != nil {
		logger.Error("Ledger integrity check failed", "error", err)
		os.Exit(1)
	}

	// Catch up overdue recurring rules before serving traffic
	if generated := st.ProcessRecurring(ctx); generated > 0 {
		logger.Info("Startup recurring catch-up", "generated", generated)
	}
	logUpcomingReminders(st, cfg.LookaheadDays, logger)

	var syncStatus apphttp.SyncStatus
	if syncer != nil {
		syncStatus = syncer
	}
	srv := apphttp.NewServer(":"+cfg.Port, st, syncStatus, cfg.LookaheadDays, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.RecurringInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if generated := st.ProcessRecurring(gctx); generated > 0 {
					logger.Info("Periodic recurring catch-up", "generated", generated)
				}
				logUpcomingReminders(st, cfg.LookaheadDays, logger)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	if syncer != nil {
		syncer.Wait()
	}
	logger.Info("Server stopped gracefully")
}

// logUpcomingReminders logs each rule due within the lookahead window,
// with its amount rendered in the wallet's currency.
func logUpcomingReminders(st *store.Store, lookaheadDays int, logger *applog.Logger) {
	snap := st.Snapshot()
	currencies := make(map[string]string, len(snap.Wallets))
	for _, w := range snap.Wallets {
		currencies[w.ID] = w.Currency
	}
	for _, rule := range st.Upcoming(lookaheadDays) {
		logger.Info("Upcoming recurring payment",
			applog.FieldRuleID, rule.ID,
			"description", rule.Description,
			applog.FieldAmount, core.FormatCurrency(rule.Amount, currencies[rule.WalletID]),
			"dueDate", rule.NextDueDate.Format(core.DateFormat))
	}
}
