package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/parcel-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const batchSize = 50

// PGHandler is an slog.Handler that batches ERROR+ logs to PostgreSQL so
// payment inconsistencies and reconcile failures can be queried later.
type PGHandler struct {
	write    func([]models.SystemLog) error
	mu       *sync.Mutex
	buffer   *[]models.SystemLog
	attrs    []slog.Attr
	ticker   *time.Ticker
	done     chan struct{}
	stopped  chan struct{} // closed after the final flush
	stopOnce *sync.Once
}

func NewPGHandler(db *gorm.DB) *PGHandler {
	return newPGHandler(func(batch []models.SystemLog) error {
		return db.CreateInBatches(batch, batchSize).Error
	}, 5*time.Second)
}

func newPGHandler(write func([]models.SystemLog) error, interval time.Duration) *PGHandler {
	buf := make([]models.SystemLog, 0, batchSize)
	h := &PGHandler{
		write:    write,
		mu:       &sync.Mutex{},
		buffer:   &buf,
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		stopOnce: &sync.Once{},
	}
	go h.flushLoop()
	return h
}

func (h *PGHandler) flushLoop() {
	defer close(h.stopped)
	for {
		select {
		case <-h.ticker.C:
			h.flush()
		case <-h.done:
			h.flush()
			return
		}
	}
}

func (h *PGHandler) flush() {
	h.mu.Lock()
	if len(*h.buffer) == 0 {
		h.mu.Unlock()
		return
	}
	batch := *h.buffer
	*h.buffer = make([]models.SystemLog, 0, batchSize)
	h.mu.Unlock()

	if err := h.write(batch); err != nil {
		// Must not recurse into this handler.
		slog.Warn("failed to flush system logs to DB", "error", err, "count", len(batch))
	}
}

// Stop flushes what is buffered and returns once it has been written.
// Calling it again is a no-op.
func (h *PGHandler) Stop() {
	h.stopOnce.Do(func() {
		h.ticker.Stop()
		close(h.done)
	})
	<-h.stopped
}

// Enabled only handles ERROR and above.
func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]interface{})
	apply := func(a slog.Attr) bool {
		switch a.Key {
		case "tenant_id":
			s := a.Value.String()
			entry.TenantID = &s
		case "reference":
			entry.Reference = a.Value.String()
		case "request_id":
			entry.RequestID = a.Value.String()
		case "action":
			entry.Action = a.Value.String()
		case "error":
			entry.Error = a.Value.String()
		default:
			extra[a.Key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		apply(a)
	}
	record.Attrs(apply)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	h.mu.Lock()
	*h.buffer = append(*h.buffer, entry)
	needFlush := len(*h.buffer) >= batchSize
	h.mu.Unlock()

	if needFlush {
		go h.flush()
	}
	return nil
}

// WithAttrs shares the buffer and flush loop with the parent handler.
func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

func (h *PGHandler) WithGroup(name string) slog.Handler {
	return h
}
