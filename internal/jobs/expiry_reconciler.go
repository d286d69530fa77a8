// Package jobs holds the batch passes that are triggered by an external
// scheduler. Each pass is safe to re-run from scratch.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// keepOnExpiry is how many active listings a downgraded agent keeps.
const keepOnExpiry = 1

// Report summarises one reconcile pass.
type Report struct {
	ExpiredCount     int         `json:"expiredCount"`
	UnpublishedCount int         `json:"unpublishedCount"`
	FailedTenants    []uuid.UUID `json:"failedTenants"`
	BoostsCleared    int         `json:"boostsCleared"`
}

type ExpiryReconciler struct {
	profiles repository.ProfileRepository
	listings repository.ListingRepository
	metrics  *metrics.Collector
	workers  int
	now      func() time.Time
}

func NewExpiryReconciler(profiles repository.ProfileRepository, listings repository.ListingRepository, m *metrics.Collector, workers int) *ExpiryReconciler {
	if workers < 1 {
		workers = 1
	}
	return &ExpiryReconciler{profiles: profiles, listings: listings, metrics: m, workers: workers, now: time.Now}
}

// Run downgrades every lapsed agent and trims their active listings to the
// starter quota. The whole batch is downgraded before any listing work, so
// a per-agent listing failure never leaves that agent on a paid tier.
// Per-agent failures are logged and reported; only a failure of the bulk
// steps aborts the pass.
func (r *ExpiryReconciler) Run(ctx context.Context) (*Report, error) {
	now := r.now().UTC()
	report := &Report{FailedTenants: []uuid.UUID{}}

	expired, err := r.profiles.ListExpired(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list expired agents: %w", err)
	}

	if len(expired) > 0 {
		n, err := r.profiles.Downgrade(ctx, expired)
		if err != nil {
			return nil, fmt.Errorf("downgrade expired agents: %w", err)
		}
		report.ExpiredCount = int(n)
	}

	// Once the downgrade has committed, the agents are no longer listed as
	// expired, so their listing trim must run to completion.
	trimCtx := context.WithoutCancel(ctx)

	var (
		demoted atomic.Int64
		mu      sync.Mutex
	)
	var g errgroup.Group
	g.SetLimit(r.workers)
	for _, id := range expired {
		g.Go(func() error {
			n, err := r.trim(trimCtx, id)
			if err != nil {
				slog.Error("failed to enforce quota for downgraded agent",
					"tenant_id", id.String(), "action", "expiry_reconcile", "error", err)
				mu.Lock()
				report.FailedTenants = append(report.FailedTenants, id)
				mu.Unlock()
				return nil
			}
			demoted.Add(n)
			return nil
		})
	}
	_ = g.Wait()
	report.UnpublishedCount = int(demoted.Load())

	cleared, err := r.listings.ClearExpiredBoosts(ctx, now)
	if err != nil {
		// Read paths already ignore lapsed boosts, so this is housekeeping only.
		slog.Warn("failed to clear lapsed boosts", "action", "expiry_reconcile", "error", err)
	} else {
		report.BoostsCleared = int(cleared)
	}

	r.metrics.RecordReconcile(report.ExpiredCount, report.UnpublishedCount, len(report.FailedTenants))
	slog.Info("expiry reconcile finished",
		"expired", report.ExpiredCount,
		"unpublished", report.UnpublishedCount,
		"failed", len(report.FailedTenants),
		"boosts_cleared", report.BoostsCleared)
	return report, nil
}

// trim keeps the most recently touched active listings and demotes the rest.
func (r *ExpiryReconciler) trim(ctx context.Context, agentID uuid.UUID) (int64, error) {
	active, err := r.listings.ListActiveByAgent(ctx, agentID)
	if err != nil {
		return 0, fmt.Errorf("list active listings: %w", err)
	}
	if len(active) <= keepOnExpiry {
		return 0, nil
	}

	ids := make([]uuid.UUID, 0, len(active)-keepOnExpiry)
	for _, l := range active[keepOnExpiry:] {
		ids = append(ids, l.ID)
	}
	n, err := r.listings.Demote(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("demote listings: %w", err)
	}
	return n, nil
}
