package syncq

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openturf/territory-backend-go/internal/models"
)

// memBlobs is an in-memory blob.Store.
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

// flakyStore is a remote.Store that fails until healed.
type flakyStore struct {
	mu      sync.Mutex
	failing bool
	created []models.Territory
	updated []models.OwnerUpdate
}

func (s *flakyStore) Subscribe(context.Context) (<-chan []models.Territory, error) {
	return nil, errors.New("not implemented")
}

func (s *flakyStore) Create(_ context.Context, t models.Territory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errors.New("store unavailable")
	}
	s.created = append(s.created, t)
	return nil
}

func (s *flakyStore) UpdateOwners(_ context.Context, id string, owners []models.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errors.New("store unavailable")
	}
	s.updated = append(s.updated, models.OwnerUpdate{TerritoryID: id, Owners: owners})
	return nil
}

func (s *flakyStore) Delete(context.Context, string) error { return nil }

func (s *flakyStore) QueryByOwner(context.Context, string) ([]models.Territory, error) {
	return nil, nil
}

func (s *flakyStore) setFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

func testTerritory(id string) models.Territory {
	return models.Territory{
		ID:   id,
		Mode: models.ModeWalk,
		Polygon: []models.Point{
			{Latitude: 0, Longitude: 0},
			{Latitude: 0, Longitude: 0.0005},
			{Latitude: 0.0005, Longitude: 0},
		},
		CreatedAt: 1_700_000_000_000,
		Owners:    []models.Owner{{OwnerID: "alice", Strength: 1.0}},
	}
}

func TestQueueDrainRetriesUntilSuccess(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	store := &flakyStore{failing: true}
	q := NewQueue(blobs, store, DefaultDrainInterval, nil, zap.NewNop())

	require.NoError(t, q.PushCreate(ctx, testTerritory("t1")))
	require.NoError(t, q.PushOwnerUpdate(ctx, models.OwnerUpdate{
		TerritoryID: "t2",
		Owners:      []models.Owner{{OwnerID: "bob", Strength: 0.5}},
	}))

	// Still down: entries must survive the failed drain.
	q.Drain(ctx)
	creates, updates := q.Depth(ctx)
	assert.Equal(t, 1, creates)
	assert.Equal(t, 1, updates)
	assert.Empty(t, store.created)

	// Healed: one drain flushes everything, in order.
	store.setFailing(false)
	q.Drain(ctx)
	creates, updates = q.Depth(ctx)
	assert.Zero(t, creates)
	assert.Zero(t, updates)
	require.Len(t, store.created, 1)
	assert.Equal(t, "t1", store.created[0].ID)
	require.Len(t, store.updated, 1)
	assert.Equal(t, "t2", store.updated[0].TerritoryID)

	// Confirmed entries are gone for good.
	q.Drain(ctx)
	assert.Len(t, store.created, 1)
}

func TestQueuePersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	store := &flakyStore{failing: true}

	q := NewQueue(blobs, store, DefaultDrainInterval, nil, zap.NewNop())
	require.NoError(t, q.PushCreate(ctx, testTerritory("t1")))

	// A new queue over the same blob store sees the pending entry.
	store.setFailing(false)
	q2 := NewQueue(blobs, store, DefaultDrainInterval, nil, zap.NewNop())
	q2.Drain(ctx)
	require.Len(t, store.created, 1)
	assert.Equal(t, "t1", store.created[0].ID)
}

func TestQueueDiscardsMalformedBlobs(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	store := &flakyStore{}
	require.NoError(t, blobs.Set(ctx, pendingCreatesKey, "not-json{"))
	require.NoError(t, blobs.Set(ctx, pendingUpdatesKey, `{"wrong":"shape"}`))

	q := NewQueue(blobs, store, DefaultDrainInterval, nil, zap.NewNop())
	creates, updates := q.Depth(ctx)
	assert.Zero(t, creates)
	assert.Zero(t, updates)

	// The corrupt keys were removed, not left to crash every drain.
	_, ok, err := blobs.Get(ctx, pendingCreatesKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueueForegroundCoalesces(t *testing.T) {
	q := NewQueue(newMemBlobs(), &flakyStore{}, DefaultDrainInterval, nil, zap.NewNop())

	// Multiple foreground signals collapse into one pending kick and
	// never block the caller.
	q.Foreground()
	q.Foreground()
	q.Foreground()

	select {
	case <-q.kick:
	default:
		t.Fatal("expected a pending drain kick")
	}
	select {
	case <-q.kick:
		t.Fatal("kicks should coalesce")
	default:
	}
}
