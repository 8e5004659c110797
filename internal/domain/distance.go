package domain

import "math"

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// Coords is a point in degrees.
type Coords struct{ Lat, Lon float64 }

// Distance returns the equirectangular approximation of the distance between
// a and b in kilometers. It is accurate at city scale and makes no attempt to
// handle antimeridian wraparound.
func Distance(a, b Coords) float64 {
	lat1, lon1 := radians(a.Lat), radians(a.Lon)
	lat2, lon2 := radians(b.Lat), radians(b.Lon)

	x := (lon2 - lon1) * math.Cos((lat1+lat2)/2)
	y := lat2 - lat1
	return EarthRadiusKm * math.Sqrt(x*x+y*y)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// RoundKm rounds a distance to two decimals for display.
func RoundKm(d float64) float64 { return math.Round(d*100) / 100 }
