// Package repotest provides an in-memory implementation of the repository
// interfaces for tests. Each call behaves like an independent commit.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Store backs all three repositories with shared maps.
type Store struct {
	mu           sync.Mutex
	profiles     map[uuid.UUID]models.Profile
	listings     map[uuid.UUID]models.Listing
	transactions map[uuid.UUID]models.Transaction
	now          func() time.Time

	// Failure injection. A non-nil func is consulted before the operation runs.
	FailCreateTxn   error
	FailFeature     error
	FailApplySub    error
	FailListActive  func(agentID uuid.UUID) error
	FailDowngrade   error
	FailListExpired error
	FailMarkSuccess error
}

func NewStore() *Store {
	return &Store{
		profiles:     make(map[uuid.UUID]models.Profile),
		listings:     make(map[uuid.UUID]models.Listing),
		transactions: make(map[uuid.UUID]models.Transaction),
		now:          time.Now,
	}
}

// SetClock sets the clock used for created_at/updated_at stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Profiles() repository.ProfileRepository         { return profileRepo{s} }
func (s *Store) Listings() repository.ListingRepository         { return listingRepo{s} }
func (s *Store) Transactions() repository.TransactionRepository { return txnRepo{s} }

// AddProfile seeds a profile, assigning an id when empty.
func (s *Store) AddProfile(p models.Profile) models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Tier == "" {
		p.Tier = "starter"
	}
	if p.VerificationStatus == "" {
		p.VerificationStatus = models.VerificationUnverified
	}
	if p.Role == "" {
		p.Role = "agent"
	}
	s.profiles[p.ID] = p
	return p
}

// AddListing seeds a listing as-is; timestamps are not touched.
func (s *Store) AddListing(l models.Listing) models.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Status == "" {
		l.Status = models.ListingPending
	}
	s.listings[l.ID] = l
	return l
}

func (s *Store) Profile(id uuid.UUID) models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles[id]
}

func (s *Store) Listing(id uuid.UUID) models.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listings[id]
}

// AllTransactions returns every ledger row ordered by creation.
func (s *Store) AllTransactions() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

type profileRepo struct{ s *Store }

func (r profileRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r profileRepo) ApplySubscription(_ context.Context, id uuid.UUID, tier string, expiry time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailApplySub != nil {
		return r.s.FailApplySub
	}
	p, ok := r.s.profiles[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Tier = tier
	p.SubscriptionExpiry = &expiry
	p.VerificationStatus = models.VerificationVerified
	p.IsVerified = true
	p.UpdatedAt = r.s.now()
	r.s.profiles[id] = p
	return nil
}

func (r profileRepo) ListExpired(_ context.Context, now time.Time) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailListExpired != nil {
		return nil, r.s.FailListExpired
	}
	var ids []uuid.UUID
	for id, p := range r.s.profiles {
		if p.SubscriptionExpiry != nil && p.SubscriptionExpiry.Before(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r profileRepo) Downgrade(_ context.Context, ids []uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailDowngrade != nil {
		return 0, r.s.FailDowngrade
	}
	var n int64
	for _, id := range ids {
		p, ok := r.s.profiles[id]
		if !ok {
			continue
		}
		p.Tier = "starter"
		p.SubscriptionExpiry = nil
		p.UpdatedAt = r.s.now()
		r.s.profiles[id] = p
		n++
	}
	return n, nil
}

func (r profileRepo) SetVerification(_ context.Context, id uuid.UUID, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.VerificationStatus = status
	p.IsVerified = status == models.VerificationVerified
	r.s.profiles[id] = p
	return nil
}

func (r profileRepo) PromoteToAdmin(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok || p.Role == "admin" {
		return nil
	}
	p.Role = "admin"
	r.s.profiles[id] = p
	return nil
}

type listingRepo struct{ s *Store }

func (r listingRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (r listingRepo) CountActive(_ context.Context, agentID, exclude uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, l := range r.s.listings {
		if l.AgentID == agentID && l.Status == models.ListingActive && l.ID != exclude {
			n++
		}
	}
	return n, nil
}

func (r listingRepo) SetStatus(_ context.Context, id uuid.UUID, status string, clearFeatured bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.Status = status
	if clearFeatured {
		l.IsFeatured = false
		l.FeaturedUntil = nil
	}
	l.UpdatedAt = r.s.now()
	r.s.listings[id] = l
	return nil
}

func (r listingRepo) Feature(_ context.Context, id uuid.UUID, until time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailFeature != nil {
		return r.s.FailFeature
	}
	l, ok := r.s.listings[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.IsFeatured = true
	l.FeaturedUntil = &until
	l.UpdatedAt = r.s.now()
	r.s.listings[id] = l
	return nil
}

func (r listingRepo) ListActiveByAgent(_ context.Context, agentID uuid.UUID) ([]models.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailListActive != nil {
		if err := r.s.FailListActive(agentID); err != nil {
			return nil, err
		}
	}
	var out []models.Listing
	for _, l := range r.s.listings {
		if l.AgentID == agentID && l.Status == models.ListingActive {
			out = append(out, l)
		}
	}
	// zero UpdatedAt plays the role of NULL and sorts last
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.UpdatedAt.IsZero() != b.UpdatedAt.IsZero() {
			return !a.UpdatedAt.IsZero()
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return out, nil
}

func (r listingRepo) Demote(_ context.Context, ids []uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, id := range ids {
		l, ok := r.s.listings[id]
		if !ok || l.Status != models.ListingActive {
			continue
		}
		l.Status = models.ListingPending
		l.IsFeatured = false
		l.FeaturedUntil = nil
		l.UpdatedAt = r.s.now()
		r.s.listings[id] = l
		n++
	}
	return n, nil
}

func (r listingRepo) ListFeatured(_ context.Context, now time.Time, limit int) ([]models.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Listing
	for _, l := range r.s.listings {
		if l.Status == models.ListingActive && l.IsFeatured && l.FeaturedUntil != nil && l.FeaturedUntil.After(now) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FeaturedUntil.After(*out[j].FeaturedUntil) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r listingRepo) ClearExpiredBoosts(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, l := range r.s.listings {
		if l.IsFeatured && (l.FeaturedUntil == nil || !l.FeaturedUntil.After(now)) {
			l.IsFeatured = false
			l.FeaturedUntil = nil
			r.s.listings[id] = l
			n++
		}
	}
	return n, nil
}

type txnRepo struct{ s *Store }

func (r txnRepo) Create(_ context.Context, txn *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailCreateTxn != nil {
		return r.s.FailCreateTxn
	}
	for _, t := range r.s.transactions {
		if t.Reference == txn.Reference {
			return repository.ErrDuplicateReference
		}
	}
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	txn.Status = models.TransactionPending
	now := r.s.now()
	txn.CreatedAt = now
	txn.UpdatedAt = now
	r.s.transactions[txn.ID] = *txn
	return nil
}

func (r txnRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r txnRepo) GetByReference(_ context.Context, reference string) (*models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.transactions {
		if t.Reference == reference {
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r txnRepo) MarkSuccess(_ context.Context, id uuid.UUID, payload datatypes.JSON, verifiedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailMarkSuccess != nil {
		return r.s.FailMarkSuccess
	}
	t, ok := r.s.transactions[id]
	if !ok || t.Status != models.TransactionPending {
		return repository.ErrNotFound
	}
	t.Status = models.TransactionSuccess
	t.GatewayResponse = payload
	t.VerifiedAt = &verifiedAt
	t.UpdatedAt = r.s.now()
	r.s.transactions[id] = t
	return nil
}

func (r txnRepo) MarkFailed(_ context.Context, id uuid.UUID, reason string, payload datatypes.JSON) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[id]
	if !ok || t.Status != models.TransactionPending {
		return repository.ErrNotFound
	}
	t.Status = models.TransactionFailed
	t.FailureReason = reason
	if len(payload) > 0 {
		t.GatewayResponse = payload
	}
	t.UpdatedAt = r.s.now()
	r.s.transactions[id] = t
	return nil
}

func (r txnRepo) FailStalePending(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, t := range r.s.transactions {
		if t.Status == models.TransactionPending && t.CreatedAt.Before(cutoff) {
			t.Status = models.TransactionFailed
			t.FailureReason = "stale_pending"
			r.s.transactions[id] = t
			n++
		}
	}
	return n, nil
}

func (r txnRepo) List(_ context.Context, status string, limit, offset int) ([]models.Transaction, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []models.Transaction
	for _, t := range r.s.transactions {
		if status == "" || t.Status == status {
			all = append(all, t)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}
