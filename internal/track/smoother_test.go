package track

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openturf/territory-backend-go/internal/models"
)

func TestSmoothPathShortUnchanged(t *testing.T) {
	assert.Nil(t, SmoothPath(nil, 3))

	one := []models.Point{{Latitude: 1, Longitude: 2, Timestamp: 3}}
	assert.Equal(t, one, SmoothPath(one, 3))

	two := []models.Point{
		{Latitude: 1, Longitude: 2, Timestamp: 3},
		{Latitude: 4, Longitude: 5, Timestamp: 6},
	}
	assert.Equal(t, two, SmoothPath(two, 3))
}

func TestSmoothPathPreservesLength(t *testing.T) {
	path := make([]models.Point, 20)
	for i := range path {
		path[i] = models.Point{Latitude: float64(i) * 0.0001, Longitude: 0, Timestamp: int64(i) * 3000}
	}
	for window := 1; window <= 7; window++ {
		assert.Len(t, SmoothPath(path, window), len(path), "window %d", window)
	}
}

func TestSmoothPathConstant(t *testing.T) {
	p := models.Point{Latitude: 12.34, Longitude: 56.78, Timestamp: 1000}
	path := []models.Point{p, p, p, p, p}
	for _, got := range SmoothPath(path, 5) {
		assert.InDelta(t, p.Latitude, got.Latitude, 1e-12)
		assert.InDelta(t, p.Longitude, got.Longitude, 1e-12)
		assert.Equal(t, p.Timestamp, got.Timestamp)
	}
}

func TestSmoothPathAveragesNeighbors(t *testing.T) {
	path := []models.Point{
		{Latitude: 0, Longitude: 0, Timestamp: 0},
		{Latitude: 3, Longitude: 3, Timestamp: 3000},
		{Latitude: 0, Longitude: 0, Timestamp: 6000},
	}

	got := SmoothPath(path, 3)

	// Middle point averages all three; ends average two.
	assert.InDelta(t, 1.0, got[1].Latitude, 1e-12)
	assert.InDelta(t, 1.5, got[0].Latitude, 1e-12)
	assert.InDelta(t, 1.5, got[2].Latitude, 1e-12)
	assert.Equal(t, int64(3000), got[1].Timestamp)
}
