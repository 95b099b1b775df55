package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openturf/territory-backend-go/internal/arbitration"
	"github.com/openturf/territory-backend-go/internal/metrics"
	"github.com/openturf/territory-backend-go/internal/models"
	"github.com/openturf/territory-backend-go/internal/syncq"
)

type memBlobs struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemBlobs() *memBlobs {
	return &memBlobs{data: make(map[string]string)}
}

func (m *memBlobs) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memBlobs) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memBlobs) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type fakeStore struct {
	mu       sync.Mutex
	failing  bool
	creates  int
	updates  int
	snapshot chan []models.Territory
}

func newFakeStore() *fakeStore {
	return &fakeStore{snapshot: make(chan []models.Territory, 4)}
}

func (s *fakeStore) Subscribe(context.Context) (<-chan []models.Territory, error) {
	return s.snapshot, nil
}

func (s *fakeStore) Create(context.Context, models.Territory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errors.New("store unavailable")
	}
	s.creates++
	return nil
}

func (s *fakeStore) UpdateOwners(context.Context, string, []models.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errors.New("store unavailable")
	}
	s.updates++
	return nil
}

func (s *fakeStore) Delete(context.Context, string) error { return nil }

func (s *fakeStore) QueryByOwner(context.Context, string) ([]models.Territory, error) {
	return nil, nil
}

func polygonFixture() []models.Point {
	return []models.Point{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 0.0005},
		{Latitude: 0.0005, Longitude: 0.0005},
		{Latitude: 0.0005, Longitude: 0},
	}
}

func newTestTerritoryService(store *fakeStore, blobs *memBlobs) *TerritoryService {
	log := zap.NewNop()
	met := metrics.New(prometheus.NewRegistry())
	queue := syncq.NewQueue(blobs, store, syncq.DefaultDrainInterval, met, log)
	return NewTerritoryService(arbitration.NewEngine(log), store, queue, blobs, met, log)
}

func TestClaimCreatesAndWritesRemote(t *testing.T) {
	store := newFakeStore()
	svc := newTestTerritoryService(store, newMemBlobs())

	result := svc.Claim(context.Background(), "alice", models.ModeWalk, polygonFixture())
	require.NotNil(t, result.Created)
	assert.Equal(t, 1, store.creates)

	listed := svc.List()
	require.Len(t, listed, 1)
	assert.Equal(t, result.Created.ID, listed[0].ID)
}

func TestClaimFallsBackToQueueOnFailure(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.failing = true
	blobs := newMemBlobs()
	svc := newTestTerritoryService(store, blobs)

	// Local state updates despite the remote being down.
	result := svc.Claim(ctx, "alice", models.ModeWalk, polygonFixture())
	require.NotNil(t, result.Created)
	assert.Len(t, svc.List(), 1)

	creates, updates := svc.queue.Depth(ctx)
	assert.Equal(t, 1, creates)
	assert.Zero(t, updates)

	// A second overlapping claim mutates owners; that write queues too.
	svc.Claim(ctx, "alice", models.ModeWalk, polygonFixture())
	creates, updates = svc.queue.Depth(ctx)
	assert.Equal(t, 1, creates)
	assert.Equal(t, 1, updates)

	// Once the store heals, the drain flushes both.
	store.failing = false
	svc.queue.Drain(ctx)
	assert.Equal(t, 1, store.creates)
	assert.Equal(t, 1, store.updates)
}

func TestListProjectsDecay(t *testing.T) {
	store := newFakeStore()
	svc := newTestTerritoryService(store, newMemBlobs())

	svc.Claim(context.Background(), "alice", models.ModeWalk, polygonFixture())

	// Jump the service clock 35 days ahead.
	created := svc.territories[0].CreatedAt
	svc.now = func() int64 { return created + 35*86_400_000 }

	listed := svc.List()
	require.Len(t, listed, 1)
	assert.InEpsilon(t, 0.4931, listed[0].Owners[0].Strength, 0.01)

	// Stored strength is untouched.
	assert.Equal(t, 1.0, svc.territories[0].Owners[0].Strength)
}

func TestScoreWeightsAreaByStrength(t *testing.T) {
	store := newFakeStore()
	svc := newTestTerritoryService(store, newMemBlobs())

	svc.Claim(context.Background(), "alice", models.ModeWalk, polygonFixture())

	score := svc.Score("alice")
	assert.Greater(t, score, 0.0)
	assert.Zero(t, svc.Score("bob"))
}

func TestSnapshotReplacesLocalState(t *testing.T) {
	store := newFakeStore()
	blobs := newMemBlobs()
	svc := newTestTerritoryService(store, blobs)

	svc.Claim(context.Background(), "alice", models.ModeWalk, polygonFixture())
	require.Len(t, svc.List(), 1)

	// The remote snapshot is authoritative and replaces, not merges:
	// the locally created territory vanishes.
	remoteSet := []models.Territory{
		{
			ID:        "remote-1",
			Mode:      models.ModeRun,
			Polygon:   polygonFixture(),
			CreatedAt: 42,
			Owners:    []models.Owner{{OwnerID: "bob", Strength: 1.0}},
		},
	}
	store.snapshot <- remoteSet
	close(store.snapshot)

	ctx := context.Background()
	require.NoError(t, svc.Run(ctx))

	listed := svc.List()
	require.Len(t, listed, 1)
	assert.Equal(t, "remote-1", listed[0].ID)
}

func TestLoadCacheDiscardsMalformed(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	require.NoError(t, blobs.Set(ctx, territoriesCacheKey, "corrupt{"))

	svc := newTestTerritoryService(newFakeStore(), blobs)
	svc.LoadCache(ctx)
	assert.Empty(t, svc.List())

	_, ok, err := blobs.Get(ctx, territoriesCacheKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadCacheRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	store := newFakeStore()

	first := newTestTerritoryService(store, blobs)
	first.Claim(ctx, "alice", models.ModeWalk, polygonFixture())

	second := newTestTerritoryService(store, blobs)
	second.LoadCache(ctx)
	assert.Len(t, second.List(), 1)
}
