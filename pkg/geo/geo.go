package geo

import "math"

// LatLng represents a geographic coordinate (WGS84).
type LatLng struct {
	Lat float64
	Lng float64
}

// XY represents a point in a projected coordinate system, in meters.
type XY struct {
	X float64
	Y float64
}

// Dist returns the Euclidean distance in meters between two projected points.
func Dist(a, b XY) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// PolylineLength returns the total length in meters of a projected polyline.
func PolylineLength(pts []XY) float64 {
	var total float64
	for i := 0; i < len(pts)-1; i++ {
		total += Dist(pts[i], pts[i+1])
	}
	return total
}
