// Package geo provides the spherical geometry primitives used by vehicle
// tracking: great-circle distance, initial bearing, cardinal direction
// labels, and coordinate validation.
package geo

import (
	"math"
	"strconv"
	"strings"
)

const (
	// RadiusOfEarthInMeters is the mean Earth radius used by the haversine formula.
	RadiusOfEarthInMeters = 6371000.0
)

// cardinals in clockwise order starting at north; 45 degree sectors.
var cardinals = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Distance returns the haversine great-circle distance in meters between
// two points given in decimal degrees.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180)
	dLon := (lon2 - lon1) * (math.Pi / 180)
	lat1Rad := lat1 * (math.Pi / 180)
	lat2Rad := lat2 * (math.Pi / 180)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return RadiusOfEarthInMeters * c
}

// Bearing returns the initial great-circle bearing in degrees from the first
// point to the second, normalized to [0, 360). 0 is north, 90 is east.
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * (math.Pi / 180)
	lat2Rad := lat2 * (math.Pi / 180)
	dLonRad := (lon2 - lon1) * (math.Pi / 180)

	y := math.Sin(dLonRad) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) -
		math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(dLonRad)

	deg := math.Atan2(y, x) * (180 / math.Pi)
	return math.Mod(deg+360, 360)
}

// Cardinal maps a bearing in degrees to one of the eight compass points.
// Sectors are centered on the compass points, so 337.5 through 22.5 is "N".
func Cardinal(bearing float64) string {
	idx := int(math.Round(bearing/45)) % 8
	if idx < 0 {
		idx += 8
	}
	return cardinals[idx]
}

// IsFiniteCoordinate reports whether v is a usable coordinate value,
// rejecting NaN and infinities.
func IsFiniteCoordinate(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ParseCoordinate coerces a JSON-decoded value into a finite float64.
// Feed documents carry coordinates as either numbers or strings.
func ParseCoordinate(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, IsFiniteCoordinate(val)
	case float32:
		return float64(val), IsFiniteCoordinate(float64(val))
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, IsFiniteCoordinate(f)
	default:
		return 0, false
	}
}
