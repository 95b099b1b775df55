package track

import (
	"github.com/openturf/territory-backend-go/internal/models"
	"github.com/openturf/territory-backend-go/internal/spatial"
)

// Ingestion thresholds.
const (
	// MaxAccuracyMeters rejects samples with worse reported horizontal
	// accuracy than this.
	MaxAccuracyMeters = 50.0

	// MaxJumpMeters rejects samples further than this from the last
	// accepted point; such jumps are GPS glitches, not movement.
	MaxJumpMeters = 100.0
)

// RejectReason explains why a raw sample was not appended to the path.
type RejectReason string

const (
	RejectNone     RejectReason = ""
	RejectAccuracy RejectReason = "accuracy"
	RejectJump     RejectReason = "jump"
)

// FilterSample applies the accuracy and jump filters to a raw sample.
// last is the path's current last accepted point, or nil for an empty
// path. Returns RejectNone when the sample should be appended.
func FilterSample(sample models.RawSample, last *models.Point) RejectReason {
	if sample.Accuracy > MaxAccuracyMeters {
		return RejectAccuracy
	}
	if last != nil && spatial.DistanceMeters(*last, sample.Point()) > MaxJumpMeters {
		return RejectJump
	}
	return RejectNone
}
