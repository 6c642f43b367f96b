package geo

import "github.com/golang/geo/s2"

const earthRadiusKm = 6371.0088

// HaversineKm returns the great-circle distance between two coordinates in
// kilometers, computed on the s2 unit sphere.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	a := s2.LatLngFromDegrees(lat1, lng1)
	b := s2.LatLngFromDegrees(lat2, lng2)
	return a.Distance(b).Radians() * earthRadiusKm
}

// DistanceM is HaversineKm in meters, the unit the recording policy works in.
func DistanceM(lat1, lng1, lat2, lng2 float64) float64 {
	return HaversineKm(lat1, lng1, lat2, lng2) * 1000
}
