package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openturf/territory-backend-go/internal/arbitration"
	"github.com/openturf/territory-backend-go/internal/blob"
	"github.com/openturf/territory-backend-go/internal/metrics"
	"github.com/openturf/territory-backend-go/internal/models"
	"github.com/openturf/territory-backend-go/internal/remote"
	"github.com/openturf/territory-backend-go/internal/spatial"
	"github.com/openturf/territory-backend-go/internal/syncq"
)

// territoriesCacheKey is the blob key holding the last known territory
// snapshot, so a restart before the first subscription delivery still
// serves territories.
const territoriesCacheKey = "territories"

// TerritoryService owns the local authoritative territory cache. The
// cache is optimistic: arbitration updates it immediately, remote
// writes follow, and failed writes fall back to the retry queue. An
// inbound subscription snapshot replaces the cache wholesale
// (last-writer-wins; in-flight local assumptions are not merged).
type TerritoryService struct {
	mu          sync.RWMutex
	territories []models.Territory

	engine *arbitration.Engine
	store  remote.Store
	queue  *syncq.Queue
	blobs  blob.Store
	met    *metrics.Metrics
	log    *zap.Logger
	now    func() int64
}

// NewTerritoryService creates the territory service.
func NewTerritoryService(engine *arbitration.Engine, store remote.Store, queue *syncq.Queue, blobs blob.Store, met *metrics.Metrics, log *zap.Logger) *TerritoryService {
	return &TerritoryService{
		engine: engine,
		store:  store,
		queue:  queue,
		blobs:  blobs,
		met:    met,
		log:    log,
		now:    func() int64 { return time.Now().UnixMilli() },
	}
}

// LoadCache restores the territory snapshot persisted by a previous
// run. A malformed snapshot is discarded and the cache left empty.
func (s *TerritoryService) LoadCache(ctx context.Context) {
	raw, ok, err := s.blobs.Get(ctx, territoriesCacheKey)
	if err != nil || !ok {
		return
	}
	var cached []models.Territory
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		s.log.Warn("discarding malformed territory cache", zap.Error(err))
		s.blobs.Remove(ctx, territoriesCacheKey)
		return
	}

	s.mu.Lock()
	s.territories = cached
	s.mu.Unlock()
	s.log.Info("territory cache restored", zap.Int("territories", len(cached)))
}

// Run consumes the remote subscription until ctx is cancelled. Every
// snapshot replaces the local cache and is re-persisted.
func (s *TerritoryService) Run(ctx context.Context) error {
	snapshots, err := s.store.Subscribe(ctx)
	if err != nil {
		return err
	}

	for snap := range snapshots {
		s.mu.Lock()
		s.territories = snap
		s.mu.Unlock()
		s.persistCache(ctx, snap)
		s.log.Debug("territory snapshot applied", zap.Int("territories", len(snap)))
	}
	return nil
}

// Claim arbitrates one captured polygon for an owner. Local state is
// updated first; remote writes follow, diverting to the retry queue on
// failure.
func (s *TerritoryService) Claim(ctx context.Context, ownerID string, mode models.ActivityMode, polygon []models.Point) arbitration.Result {
	claim := arbitration.Claim{
		OwnerID:    ownerID,
		Mode:       mode,
		Polygon:    polygon,
		CapturedAt: s.now(),
	}

	s.mu.Lock()
	result := s.engine.Arbitrate(s.territories, claim)
	s.territories = result.Territories
	s.mu.Unlock()

	for _, outcome := range result.Outcomes {
		s.met.Arbitrations.WithLabelValues(string(outcome)).Inc()
	}

	s.persistCache(ctx, result.Territories)

	if result.Created != nil {
		if err := s.store.Create(ctx, *result.Created); err != nil {
			s.met.RemoteWriteFailures.Inc()
			s.log.Warn("territory create deferred to retry queue",
				zap.String("territoryId", result.Created.ID), zap.Error(err))
			s.queue.PushCreate(ctx, *result.Created)
		}
	}
	for _, t := range result.Changed {
		if err := s.store.UpdateOwners(ctx, t.ID, t.Owners); err != nil {
			s.met.RemoteWriteFailures.Inc()
			s.log.Warn("owner update deferred to retry queue",
				zap.String("territoryId", t.ID), zap.Error(err))
			s.queue.PushOwnerUpdate(ctx, models.OwnerUpdate{TerritoryID: t.ID, Owners: t.Owners})
		}
	}

	return result
}

// List returns all territories with decay projected at read time.
func (s *TerritoryService) List() []models.Territory {
	s.mu.RLock()
	current := s.territories
	s.mu.RUnlock()
	return arbitration.ProjectDecay(current, s.now())
}

// ListByOwner returns the decay-projected territories in which ownerID
// holds a stake.
func (s *TerritoryService) ListByOwner(ownerID string) []models.Territory {
	var out []models.Territory
	for _, t := range s.List() {
		if t.OwnerIndex(ownerID) >= 0 {
			out = append(out, t)
		}
	}
	return out
}

// Score sums area × decay-projected strength across the owner's
// stakes.
func (s *TerritoryService) Score(ownerID string) float64 {
	var score float64
	for _, t := range s.ListByOwner(ownerID) {
		idx := t.OwnerIndex(ownerID)
		score += spatial.PolygonAreaSquareMeters(t.Polygon) * t.Owners[idx].Strength
	}
	return score
}

// Delete removes a territory locally and remotely. Remote failures
// surface to the caller; deletion is user-driven, not queued.
func (s *TerritoryService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	kept := make([]models.Territory, 0, len(s.territories))
	for _, t := range s.territories {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.territories = kept
	s.mu.Unlock()

	s.persistCache(ctx, kept)
	return nil
}

func (s *TerritoryService) persistCache(ctx context.Context, territories []models.Territory) {
	raw, err := json.Marshal(territories)
	if err != nil {
		s.log.Error("failed to marshal territory cache", zap.Error(err))
		return
	}
	if err := s.blobs.Set(ctx, territoriesCacheKey, string(raw)); err != nil {
		s.log.Warn("failed to persist territory cache", zap.Error(err))
	}
}
