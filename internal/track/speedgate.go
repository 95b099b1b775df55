package track

import (
	"github.com/openturf/territory-backend-go/internal/models"
	"github.com/openturf/territory-backend-go/internal/spatial"
)

// SpeedGateFactor scales the mode's max speed into the rejection
// threshold for the distance accumulator.
const SpeedGateFactor = 1.5

// minElapsedSeconds floors the elapsed time used for instantaneous
// speed so a burst of same-second samples cannot blow up the division.
const minElapsedSeconds = 1.0

// InstantSpeed computes the speed in m/s between two consecutive
// smoothed points, flooring elapsed time at one second.
func InstantSpeed(a, b models.Point) float64 {
	elapsed := float64(b.Timestamp-a.Timestamp) / 1000
	if elapsed < minElapsedSeconds {
		elapsed = minElapsedSeconds
	}
	return spatial.DistanceMeters(a, b) / elapsed
}

// GateSegment returns the distance contribution of the segment between
// the last two smoothed points, or 0 when the implied speed exceeds the
// gate for the mode. Gated points stay in the path for geometry; only
// the distance accumulator skips them.
func GateSegment(a, b models.Point, mode models.ActivityMode) float64 {
	d := spatial.DistanceMeters(a, b)
	if InstantSpeed(a, b) > SpeedGateFactor*mode.MaxSpeed() {
		return 0
	}
	return d
}

// StepDistance derives distance from a running step total using the
// mode's average stride length. Returns 0 for modes without a stride
// (cycling), meaning the caller should fall back to the accumulator.
func StepDistance(mode models.ActivityMode, steps int64) float64 {
	if steps <= 0 {
		return 0
	}
	return float64(steps) * mode.Stride()
}
