// Package loop detects when a smoothed GPS path closes into a loop
// worth capturing as territory.
package loop

import (
	"github.com/openturf/territory-backend-go/internal/models"
	"github.com/openturf/territory-backend-go/internal/spatial"
)

// Capture thresholds.
const (
	// CloseThresholdMeters is how near the path's last point must come
	// to an earlier point to count as closure.
	CloseThresholdMeters = 50.0

	// MinLoopDistanceMeters is the minimum walked distance around a
	// candidate loop; shorter closures are GPS jitter.
	MinLoopDistanceMeters = 20.0

	// MinAreaSquareMeters is the minimum enclosed area for a capture.
	MinAreaSquareMeters = 30.0

	// minGapPoints keeps the closure candidate at least this many
	// points behind the path head, so the detector only runs once the
	// path has grown past it.
	minGapPoints = 10
)

// Capture is an accepted loop: the enclosed polygon, its area and
// walked distance, and the index on the source path where the loop
// closed. The polygon is an independent copy; callers truncate the live
// path to [0, ClosureIndex] and keep tracking.
type Capture struct {
	Polygon          []models.Point `json:"polygon"`
	AreaSquareMeters float64        `json:"areaSquareMeters"`
	DistanceMeters   float64        `json:"distanceMeters"`
	ClosureIndex     int            `json:"closureIndex"`
}

// Detect scans the path for self-closure and returns at most one
// capture, or nil. Candidate start indices are checked oldest-first and
// the first acceptable candidate wins, which biases toward longer
// loops. A candidate closes when the last point comes within
// CloseThresholdMeters of it and the cumulative distance from it to the
// end exceeds MinLoopDistanceMeters; the capture only fires when the
// enclosed area reaches MinAreaSquareMeters.
func Detect(path []models.Point) *Capture {
	if len(path) <= minGapPoints {
		return nil
	}

	last := path[len(path)-1]
	candidate := -1
	var loopDistance float64

	for i := 0; i <= len(path)-minGapPoints; i++ {
		if spatial.DistanceMeters(path[i], last) >= CloseThresholdMeters {
			continue
		}
		d := spatial.PathDistanceMeters(path[i:])
		if d > MinLoopDistanceMeters {
			candidate = i
			loopDistance = d
			break
		}
	}

	if candidate < 0 {
		return nil
	}

	polygon := path[candidate:]
	area := spatial.PolygonAreaSquareMeters(polygon)
	if area < MinAreaSquareMeters {
		return nil
	}

	return &Capture{
		Polygon:          models.ClonePath(polygon),
		AreaSquareMeters: area,
		DistanceMeters:   loopDistance,
		ClosureIndex:     candidate,
	}
}
