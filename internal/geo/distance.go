package geo

import "github.com/umahmood/haversine"

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// GreatCircleKm returns the haversine distance in kilometers between two
// coordinates given in degrees.
func GreatCircleKm(lat1, lon1, lat2, lon2 float64) float64 {
	_, km := haversine.Distance(
		haversine.Coord{Lat: lat1, Lon: lon1},
		haversine.Coord{Lat: lat2, Lon: lon2},
	)
	return km
}

// DistanceKm is GreatCircleKm over two points.
func DistanceKm(a, b Point) float64 {
	return GreatCircleKm(a.Lat, a.Lng, b.Lat, b.Lng)
}
