package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/repository"
)

// SweepReport summarises one sweep of stuck ledger rows.
type SweepReport struct {
	FailedCount int       `json:"failedCount"`
	Cutoff      time.Time `json:"cutoff"`
}

// PendingSweeper fails ledger rows left pending by a crashed process. A
// request always terminates its own row, so anything still pending after
// the timeout has no owner.
type PendingSweeper struct {
	txns    repository.TransactionRepository
	timeout time.Duration
	metrics *metrics.Collector
	now     func() time.Time
}

func NewPendingSweeper(txns repository.TransactionRepository, timeout time.Duration, m *metrics.Collector) *PendingSweeper {
	if timeout <= 0 {
		timeout = 15 * time.Minute
	}
	return &PendingSweeper{txns: txns, timeout: timeout, metrics: m, now: time.Now}
}

func (s *PendingSweeper) Run(ctx context.Context) (*SweepReport, error) {
	cutoff := s.now().UTC().Add(-s.timeout)
	n, err := s.txns.FailStalePending(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("fail stale transactions: %w", err)
	}
	s.metrics.RecordStale(n)
	if n > 0 {
		slog.Warn("failed stale pending transactions", "count", n, "cutoff", cutoff, "action", "pending_sweep")
	}
	return &SweepReport{FailedCount: int(n), Cutoff: cutoff}, nil
}
