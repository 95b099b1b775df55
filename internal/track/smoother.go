package track

import "github.com/openturf/territory-backend-go/internal/models"

// Smoothing window bounds.
const (
	MinSmoothWindow     = 2
	MaxSmoothWindow     = 5
	DefaultSmoothWindow = 3
)

// SmoothPath applies a centered moving-average to the whole path and
// returns a new sequence of the same length. Each output point averages
// up to window/2 neighbors on each side; windows are clamped (and so
// asymmetric) at the path boundaries. Paths of length <= 2 are returned
// unchanged. The whole path is recomputed on every call; paths are
// bounded by session length and truncated on loop capture, so this
// stays cheap.
func SmoothPath(path []models.Point, window int) []models.Point {
	if len(path) <= 2 {
		return path
	}

	if window < MinSmoothWindow {
		window = MinSmoothWindow
	}
	if window > MaxSmoothWindow {
		window = MaxSmoothWindow
	}
	half := window / 2

	out := make([]models.Point, len(path))
	for i := range path {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi > len(path)-1 {
			hi = len(path) - 1
		}

		var sumLat, sumLon, sumTS float64
		for j := lo; j <= hi; j++ {
			sumLat += path[j].Latitude
			sumLon += path[j].Longitude
			sumTS += float64(path[j].Timestamp)
		}
		n := float64(hi - lo + 1)
		out[i] = models.Point{
			Latitude:  sumLat / n,
			Longitude: sumLon / n,
			Timestamp: int64(sumTS / n),
		}
	}

	return out
}
