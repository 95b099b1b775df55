// Package syncq is the outbound mutation queue between the optimistic
// local territory state and the remote store. Failed remote writes land
// here and are drained on a timer and on foreground transitions.
package syncq

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openturf/territory-backend-go/internal/blob"
	"github.com/openturf/territory-backend-go/internal/metrics"
	"github.com/openturf/territory-backend-go/internal/models"
	"github.com/openturf/territory-backend-go/internal/remote"
)

// Blob keys for the two pending-upload queues.
const (
	pendingCreatesKey = "pending_territories"
	pendingUpdatesKey = "pending_owner_updates"
)

// DefaultDrainInterval is how often the queue retries pending writes.
const DefaultDrainInterval = 15 * time.Second

// Queue persists pending territory creates and owner updates through
// the blob store and retries them against the remote store. Entries are
// removed only after a confirmed successful write. Creates carry the
// client-generated territory id, so retries upsert rather than
// double-insert.
type Queue struct {
	mu       sync.Mutex
	blobs    blob.Store
	store    remote.Store
	log      *zap.Logger
	met      *metrics.Metrics
	interval time.Duration
	kick     chan struct{}
}

// NewQueue creates a queue draining into store on interval.
func NewQueue(blobs blob.Store, store remote.Store, interval time.Duration, met *metrics.Metrics, log *zap.Logger) *Queue {
	if interval <= 0 {
		interval = DefaultDrainInterval
	}
	return &Queue{
		blobs:    blobs,
		store:    store,
		log:      log,
		met:      met,
		interval: interval,
		kick:     make(chan struct{}, 1),
	}
}

// PushCreate appends a failed territory create to the persistent queue.
func (q *Queue) PushCreate(ctx context.Context, t models.Territory) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.loadCreates(ctx)
	pending = append(pending, t)
	return q.saveCreates(ctx, pending)
}

// PushOwnerUpdate appends a failed owners write to the persistent
// queue. The full owners array is carried, not a delta.
func (q *Queue) PushOwnerUpdate(ctx context.Context, u models.OwnerUpdate) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.loadUpdates(ctx)
	pending = append(pending, u)
	return q.saveUpdates(ctx, pending)
}

// Depth reports the number of pending creates and owner updates.
func (q *Queue) Depth(ctx context.Context) (creates, updates int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.loadCreates(ctx)), len(q.loadUpdates(ctx))
}

// Run drains on the configured interval and on Foreground kicks until
// ctx is cancelled.
func (q *Queue) Run(ctx context.Context) {
	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.Drain(ctx)
		case <-q.kick:
			q.Drain(ctx)
		}
	}
}

// Foreground requests an immediate drain, as on an app-foreground
// transition. Non-blocking; coalesces with a pending request.
func (q *Queue) Foreground() {
	select {
	case q.kick <- struct{}{}:
	default:
	}
}

// Drain retries every pending write once, keeping entries that still
// fail. Order within each queue is preserved.
func (q *Queue) Drain(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()

	creates := q.loadCreates(ctx)
	if len(creates) > 0 {
		var remaining []models.Territory
		for _, t := range creates {
			if err := q.store.Create(ctx, t); err != nil {
				q.log.Warn("territory create retry failed",
					zap.String("territoryId", t.ID), zap.Error(err))
				remaining = append(remaining, t)
				continue
			}
		}
		if err := q.saveCreates(ctx, remaining); err != nil {
			q.log.Error("failed to persist create queue", zap.Error(err))
		}
	}

	updates := q.loadUpdates(ctx)
	if len(updates) > 0 {
		var remaining []models.OwnerUpdate
		for _, u := range updates {
			if err := q.store.UpdateOwners(ctx, u.TerritoryID, u.Owners); err != nil {
				q.log.Warn("owner update retry failed",
					zap.String("territoryId", u.TerritoryID), zap.Error(err))
				remaining = append(remaining, u)
				continue
			}
		}
		if err := q.saveUpdates(ctx, remaining); err != nil {
			q.log.Error("failed to persist update queue", zap.Error(err))
		}
	}
}

// loadCreates reads the pending-create queue. A malformed blob is
// discarded and the queue reset to empty rather than crashing.
func (q *Queue) loadCreates(ctx context.Context) []models.Territory {
	raw, ok, err := q.blobs.Get(ctx, pendingCreatesKey)
	if err != nil || !ok {
		return nil
	}
	var pending []models.Territory
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		q.log.Warn("discarding malformed create queue", zap.Error(err))
		q.blobs.Remove(ctx, pendingCreatesKey)
		return nil
	}
	return pending
}

func (q *Queue) saveCreates(ctx context.Context, pending []models.Territory) error {
	q.gauge("creates", len(pending))
	if len(pending) == 0 {
		return q.blobs.Remove(ctx, pendingCreatesKey)
	}
	raw, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	return q.blobs.Set(ctx, pendingCreatesKey, string(raw))
}

func (q *Queue) loadUpdates(ctx context.Context) []models.OwnerUpdate {
	raw, ok, err := q.blobs.Get(ctx, pendingUpdatesKey)
	if err != nil || !ok {
		return nil
	}
	var pending []models.OwnerUpdate
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		q.log.Warn("discarding malformed update queue", zap.Error(err))
		q.blobs.Remove(ctx, pendingUpdatesKey)
		return nil
	}
	return pending
}

func (q *Queue) saveUpdates(ctx context.Context, pending []models.OwnerUpdate) error {
	q.gauge("updates", len(pending))
	if len(pending) == 0 {
		return q.blobs.Remove(ctx, pendingUpdatesKey)
	}
	raw, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	return q.blobs.Set(ctx, pendingUpdatesKey, string(raw))
}

func (q *Queue) gauge(queue string, depth int) {
	if q.met != nil {
		q.met.QueueDepth.WithLabelValues(queue).Set(float64(depth))
	}
}
