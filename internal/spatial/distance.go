package spatial

import (
	"github.com/golang/geo/s2"

	"github.com/openturf/territory-backend-go/internal/models"
)

// Constants
const (
	// EarthRadiusMeters is Earth's mean radius, used for great-circle
	// distances.
	EarthRadiusMeters = 6371000.0

	// EarthSemiMajorMeters is the WGS-84 semi-major axis, used for the
	// local planar projection. The two radii intentionally differ; the
	// discrepancy is negligible for areas spanning under a kilometer.
	EarthSemiMajorMeters = 6378137.0
)

// DistanceMeters calculates the great-circle distance between two path
// points in meters. Total for any valid lat/lon; symmetric; zero for
// identical points.
func DistanceMeters(a, b models.Point) float64 {
	p1 := s2.LatLngFromDegrees(a.Latitude, a.Longitude)
	p2 := s2.LatLngFromDegrees(b.Latitude, b.Longitude)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// PathDistanceMeters calculates the cumulative length of a path in
// meters. Paths shorter than two points have length 0.
func PathDistanceMeters(path []models.Point) float64 {
	if len(path) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(path); i++ {
		total += DistanceMeters(path[i-1], path[i])
	}
	return total
}
