package geo

import "math"

// EarthRadiusMeters is the mean radius of the spherical Earth approximation.
const EarthRadiusMeters = 6371000

// Point is a WGS84 coordinate with an optional accuracy (meters) reported by the device.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

// Valid reports whether both coordinates are finite and inside WGS84 bounds.
func (p Point) Valid() bool {
	if !isFinite(p.Latitude) || !isFinite(p.Longitude) {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// DistanceMeters returns the great-circle distance between a and b using the haversine formula.
// NaN is returned when either point has a non-finite coordinate.
func DistanceMeters(a, b Point) float64 {
	if !isFinite(a.Latitude) || !isFinite(a.Longitude) || !isFinite(b.Latitude) || !isFinite(b.Longitude) {
		return math.NaN()
	}

	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	lat1Rad := toRadians(a.Latitude)
	lat2Rad := toRadians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	// rounding can push h marginally outside [0,1] for antipodal points
	h = math.Min(1, math.Max(0, h))

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusMeters * c
}

// IsWithinPerimeter reports whether point lies within radiusMeters of center.
// Any non-finite input fails the check.
func IsWithinPerimeter(point, center Point, radiusMeters float64) bool {
	if !isFinite(radiusMeters) || radiusMeters < 0 {
		return false
	}
	d := DistanceMeters(point, center)
	if math.IsNaN(d) {
		return false
	}
	return d <= radiusMeters
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
