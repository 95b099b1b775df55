package spatial

import (
	"math"

	"github.com/openturf/territory-backend-go/internal/models"
)

// BoundingBox is an axis-aligned lat/lon box around a polygon.
type BoundingBox struct {
	MinLat float64
	MinLon float64
	MaxLat float64
	MaxLon float64
}

// ProjectLocal projects a point onto a local planar (x, y) in meters
// using an equirectangular projection. originLat supplies the
// cos-latitude correction for the longitude scale. Coordinates are only
// meaningful relative to other points projected with the same origin.
func ProjectLocal(originLat float64, p models.Point) (float64, float64) {
	originRad := originLat * math.Pi / 180
	x := EarthSemiMajorMeters * (p.Longitude * math.Pi / 180) * math.Cos(originRad)
	y := EarthSemiMajorMeters * (p.Latitude * math.Pi / 180)
	return x, y
}

// PolygonAreaSquareMeters calculates the enclosed area of a polygon
// using the shoelace formula over a local projection anchored at the
// first point's latitude. The last point is treated as implicitly
// connected back to the first. Returns 0 for fewer than 3 points and
// for degenerate inputs producing non-finite projections; the result is
// always >= 0 regardless of winding direction.
func PolygonAreaSquareMeters(polygon []models.Point) float64 {
	if len(polygon) < 3 {
		return 0
	}

	originLat := polygon[0].Latitude

	xs := make([]float64, len(polygon))
	ys := make([]float64, len(polygon))
	for i, p := range polygon {
		x, y := ProjectLocal(originLat, p)
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			return 0
		}
		xs[i] = x
		ys[i] = y
	}

	var sum float64
	for i := 0; i < len(polygon); i++ {
		j := (i + 1) % len(polygon)
		sum += xs[i]*ys[j] - xs[j]*ys[i]
	}

	area := math.Abs(sum) / 2
	if math.IsNaN(area) || math.IsInf(area, 0) {
		return 0
	}
	return area
}

// ComputeBoundingBox calculates the bounding box of a polygon.
func ComputeBoundingBox(polygon []models.Point) BoundingBox {
	if len(polygon) == 0 {
		return BoundingBox{}
	}

	box := BoundingBox{
		MinLat: polygon[0].Latitude,
		MaxLat: polygon[0].Latitude,
		MinLon: polygon[0].Longitude,
		MaxLon: polygon[0].Longitude,
	}

	for _, p := range polygon[1:] {
		if p.Latitude < box.MinLat {
			box.MinLat = p.Latitude
		}
		if p.Latitude > box.MaxLat {
			box.MaxLat = p.Latitude
		}
		if p.Longitude < box.MinLon {
			box.MinLon = p.Longitude
		}
		if p.Longitude > box.MaxLon {
			box.MaxLon = p.Longitude
		}
	}

	return box
}

// Overlaps reports whether two bounding boxes intersect. This is a
// deliberately conservative test: boxes may overlap while the actual
// polygons do not, and callers tolerate that.
func (b BoundingBox) Overlaps(other BoundingBox) bool {
	return !(b.MaxLat < other.MinLat || b.MinLat > other.MaxLat ||
		b.MaxLon < other.MinLon || b.MinLon > other.MaxLon)
}

// BoundingBoxesOverlap reports whether the bounding boxes of two
// polygons intersect.
func BoundingBoxesOverlap(a, b []models.Point) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	return ComputeBoundingBox(a).Overlaps(ComputeBoundingBox(b))
}
