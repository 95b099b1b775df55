package loop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openturf/territory-backend-go/internal/models"
)

// degPerMeter approximates one meter in degrees of latitude.
const degPerMeter = 1.0 / 111195.0

// rectanglePath walks the perimeter of a w×h meter rectangle from the
// origin in stepMeters increments, stopping one step short of closing.
func rectanglePath(w, h, stepMeters float64, laps int) []models.Point {
	corners := [][2]float64{{0, 0}, {0, w}, {h, w}, {h, 0}}

	var path []models.Point
	ts := int64(0)
	for lap := 0; lap < laps; lap++ {
		for c := 0; c < 4; c++ {
			from := corners[c]
			to := corners[(c+1)%4]
			length := w
			if from[0] != to[0] {
				length = h
			}
			steps := int(length / stepMeters)
			for i := 0; i < steps; i++ {
				f := float64(i) / float64(steps)
				path = append(path, models.Point{
					Latitude:  (from[0] + (to[0]-from[0])*f) * degPerMeter,
					Longitude: (from[1] + (to[1]-from[1])*f) * degPerMeter,
					Timestamp: ts,
				})
				ts += 3000
			}
		}
	}
	return path
}

func TestDetectCapturesClosedLoop(t *testing.T) {
	// 30 m square walked in 5 m steps; the path ends ~5 m from its
	// start, encloses ~900 m² and is ~115 m long.
	path := rectanglePath(30, 30, 5, 1)
	require.Greater(t, len(path), 10)

	capture := Detect(path)
	require.NotNil(t, capture)

	// Oldest candidate wins: the start of the path closes the loop.
	assert.Equal(t, 0, capture.ClosureIndex)
	assert.Len(t, capture.Polygon, len(path))
	assert.InEpsilon(t, 900.0, capture.AreaSquareMeters, 0.05)
	assert.Greater(t, capture.DistanceMeters, MinLoopDistanceMeters)

	// The caller truncates to the closure index; the polygon must be an
	// independent copy so truncation cannot corrupt it.
	path[3].Latitude = 99
	assert.NotEqual(t, 99.0, capture.Polygon[3].Latitude)
}

func TestDetectRejectsSmallArea(t *testing.T) {
	// Two laps of a 5×1 m strip: plenty of distance, closure within
	// threshold, but only ~5 m² enclosed.
	path := rectanglePath(5, 1, 1, 2)
	require.Greater(t, len(path), 10)

	assert.Nil(t, Detect(path))
}

func TestDetectRejectsShortPath(t *testing.T) {
	path := rectanglePath(30, 30, 5, 1)[:10]
	assert.Nil(t, Detect(path))
}

func TestDetectRejectsCollinearPath(t *testing.T) {
	// A straight 200 m walk: late candidates come within the closure
	// threshold but enclose zero area.
	var path []models.Point
	for i := 0; i < 41; i++ {
		path = append(path, models.Point{
			Latitude:  float64(i) * 5 * degPerMeter,
			Longitude: 0,
			Timestamp: int64(i) * 3000,
		})
	}
	assert.Nil(t, Detect(path))
}
