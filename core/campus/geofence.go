package campus

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Contains reports whether the (lat, lon) point lies within the campus
// boundary. Points on the boundary itself count as inside. A degenerate
// boundary (fewer than 3 vertices) contains nothing.
func (c Campus) Contains(lat, lon float64) bool {
	if len(c.Boundary) < 3 {
		return false
	}
	return planar.PolygonContains(orb.Polygon{c.ring()}, orb.Point{lon, lat})
}

// FindContaining returns the first campus whose boundary contains the point,
// trying campuses in the given order. Overlapping boundaries are resolved by
// that order, nothing smarter. The second return is false when no campus
// contains the point.
func FindContaining(campuses []Campus, lat, lon float64) (Campus, bool) {
	for _, c := range campuses {
		if c.Contains(lat, lon) {
			return c, true
		}
	}
	return Campus{}, false
}
