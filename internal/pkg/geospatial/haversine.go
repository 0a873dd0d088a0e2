package geospatial

import (
	"math"

	"github.com/hydroline/analytics/internal/core/domain"
)

const (
	earthRadiusKm   = 6371.0
	metersPerDegLat = 111320.0
)

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(a, b domain.GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c * 1000
}

// SearchWindow returns a bounding box around center that encloses every point
// within radiusMeters. It is a coarse prefilter; callers confirm with Haversine.
// A window that would cross the antimeridian or reach a pole spans every
// longitude.
func SearchWindow(center domain.GeoPoint, radiusMeters float64) domain.BoundingBox {
	latDelta := radiusMeters / metersPerDegLat
	lonDelta := radiusMeters / (metersPerDegLat * math.Cos(toRad(center.Lat)))

	box := domain.BoundingBox{
		North: math.Min(90, center.Lat+latDelta),
		South: math.Max(-90, center.Lat-latDelta),
		East:  center.Lon + lonDelta,
		West:  center.Lon - lonDelta,
	}
	if box.North == 90 || box.South == -90 || box.East > 180 || box.West < -180 || math.IsNaN(lonDelta) {
		box.East, box.West = 180, -180
	}
	return box
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
