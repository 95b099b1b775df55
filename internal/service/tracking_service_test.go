package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openturf/territory-backend-go/internal/arbitration"
	"github.com/openturf/territory-backend-go/internal/database"
	"github.com/openturf/territory-backend-go/internal/metrics"
	"github.com/openturf/territory-backend-go/internal/models"
	"github.com/openturf/territory-backend-go/internal/repository"
	"github.com/openturf/territory-backend-go/internal/session"
	"github.com/openturf/territory-backend-go/internal/syncq"
	"github.com/openturf/territory-backend-go/internal/track"
)

const degPerMeter = 1.0 / 111195.0

// squareSamples walks the perimeter of a sideMeters square in
// stepMeters increments, one sample every 3 seconds.
func squareSamples(sideMeters, stepMeters float64) []models.RawSample {
	corners := [][2]float64{{0, 0}, {0, sideMeters}, {sideMeters, sideMeters}, {sideMeters, 0}}

	var samples []models.RawSample
	ts := int64(1_000)
	for c := 0; c < 4; c++ {
		from := corners[c]
		to := corners[(c+1)%4]
		steps := int(sideMeters / stepMeters)
		for i := 0; i < steps; i++ {
			f := float64(i) / float64(steps)
			samples = append(samples, models.RawSample{
				Latitude:  (from[0] + (to[0]-from[0])*f) * degPerMeter,
				Longitude: (from[1] + (to[1]-from[1])*f) * degPerMeter,
				Accuracy:  5,
				Timestamp: ts,
			})
			ts += 3000
		}
	}
	return samples
}

func newTestTrackingService(t *testing.T) (*TrackingService, *fakeStore) {
	t.Helper()

	db, err := database.Open(database.Config{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	log := zap.NewNop()
	met := metrics.New(prometheus.NewRegistry())
	store := newFakeStore()
	blobs := newMemBlobs()
	queue := syncq.NewQueue(blobs, store, syncq.DefaultDrainInterval, met, log)
	territories := NewTerritoryService(arbitration.NewEngine(log), store, queue, blobs, met, log)

	return NewTrackingService(territories, repository.NewSessionRepository(db), track.DefaultSmoothWindow, met, log), store
}

func TestTrackingLifecyclePersistsSummary(t *testing.T) {
	svc, _ := newTestTrackingService(t)

	sess, err := svc.Start("alice", models.ModeWalk)
	require.NoError(t, err)
	assert.Equal(t, models.SessionActive, sess.State)

	_, err = svc.Start("alice", models.ModeRun)
	assert.ErrorIs(t, err, session.ErrSessionActive)

	summary, err := svc.Stop("alice")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStopped, summary.State)

	history, err := svc.History("alice", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, summary.ID, history[0].ID)
}

func TestTrackingControllersAreIsolatedPerOwner(t *testing.T) {
	svc, _ := newTestTrackingService(t)

	_, err := svc.Start("alice", models.ModeWalk)
	require.NoError(t, err)

	// Bob has no session of his own.
	_, err = svc.Current("bob")
	assert.ErrorIs(t, err, session.ErrNoSession)

	_, err = svc.Start("bob", models.ModeCycle)
	assert.NoError(t, err)
}

func TestTrackingIngestRejectsBadSamples(t *testing.T) {
	svc, _ := newTestTrackingService(t)
	ctx := context.Background()

	_, err := svc.Start("alice", models.ModeWalk)
	require.NoError(t, err)

	out, err := svc.Ingest(ctx, "alice", models.RawSample{Latitude: 0, Longitude: 0, Accuracy: 80, Timestamp: 1000})
	require.NoError(t, err)
	assert.False(t, out.Accepted)
	assert.Equal(t, track.RejectAccuracy, out.Reason)
}

func TestTrackingIngestClaimsCapturedLoop(t *testing.T) {
	svc, store := newTestTrackingService(t)
	ctx := context.Background()

	_, err := svc.Start("alice", models.ModeWalk)
	require.NoError(t, err)

	var claimed *models.Territory
	for _, sample := range squareSamples(30, 5) {
		out, err := svc.Ingest(ctx, "alice", sample)
		require.NoError(t, err)
		if out.Territory != nil && claimed == nil {
			claimed = out.Territory
			assert.Contains(t, out.Outcomes, arbitration.OutcomeCreated)
		}
	}

	require.NotNil(t, claimed)
	assert.Equal(t, models.ModeWalk, claimed.Mode)
	require.Len(t, claimed.Owners, 1)
	assert.Equal(t, "alice", claimed.Owners[0].OwnerID)
	assert.Equal(t, 1.0, claimed.Owners[0].Strength)

	// The claim went through to the remote store as well.
	assert.GreaterOrEqual(t, store.creates, 1)

	// And the territory is visible through the territory listing.
	assert.NotEmpty(t, svc.territories.ListByOwner("alice"))
}
