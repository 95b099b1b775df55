package models

// Point represents a single recorded GPS position on a path.
// Timestamp is epoch milliseconds. Points are immutable once recorded.
type Point struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
	Timestamp int64   `json:"timestamp" db:"timestamp"`
}

// RawSample is a position sample as delivered by the location source,
// before filtering. Accuracy is the reported horizontal accuracy in
// meters; 0 means the source did not report one.
type RawSample struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp" binding:"required"`
}

// Point converts the sample into an immutable path point.
func (s RawSample) Point() Point {
	return Point{
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Timestamp: s.Timestamp,
	}
}

// ClonePath returns an independent copy of a point sequence. Paths are
// replaced whole on every mutation, so shared slices must never alias.
func ClonePath(path []Point) []Point {
	if path == nil {
		return nil
	}
	out := make([]Point, len(path))
	copy(out, path)
	return out
}
