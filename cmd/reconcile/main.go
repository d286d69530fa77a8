// Command reconcile runs one expiry reconcile pass and one stale-ledger
// sweep, then prints both reports as JSON. It is meant for cron hosts that
// prefer a binary over calling the job endpoints.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/jobs"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/repository"
	"golang.org/x/sync/errgroup"
)

const passTimeout = 10 * time.Minute

type output struct {
	Reconcile *jobs.Report      `json:"reconcile"`
	Sweep     *jobs.SweepReport `json:"sweep"`
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()
	stdout := logging.NewJSONHandler(os.Stderr, cfg.LogLevel)
	slog.SetDefault(slog.New(stdout))

	db, err := database.Open(cfg.DSN())
	if err != nil {
		slog.Error("database connection failed", "error", err)
		return 1
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Stop runs before the DB closes and waits for the last batch.
	pgLogHandler := logging.NewPGHandler(db)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, pgLogHandler)))
	defer pgLogHandler.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// No scrape endpoint in a one-shot binary, so no collector.
	reconciler := jobs.NewExpiryReconciler(repository.NewProfileRepository(db), repository.NewListingRepository(db), nil, cfg.ReconcileWorkers)
	sweeper := jobs.NewPendingSweeper(repository.NewTransactionRepository(db), cfg.PendingTxnTimeout, nil)

	// The passes touch disjoint tables and must not cancel each other.
	var (
		out      output
		g        errgroup.Group
		failures = make([]error, 2)
	)
	g.Go(func() error {
		pctx, cancel := context.WithTimeout(ctx, passTimeout)
		defer cancel()
		out.Reconcile, failures[0] = reconciler.Run(pctx)
		return nil
	})
	g.Go(func() error {
		pctx, cancel := context.WithTimeout(ctx, passTimeout)
		defer cancel()
		out.Sweep, failures[1] = sweeper.Run(pctx)
		return nil
	})
	_ = g.Wait()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		slog.Error("failed to write report", "error", err)
	}

	code := 0
	if failures[0] != nil {
		slog.Error("expiry reconcile failed", "action", "expiry_reconcile", "error", failures[0])
		code = 1
	}
	if failures[1] != nil {
		slog.Error("pending sweep failed", "action", "pending_sweep", "error", failures[1])
		code = 1
	}
	return code
}
