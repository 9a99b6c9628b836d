package geo

import "math"

// compassNames are the 8 cardinal/intercardinal direction names, clockwise from north.
var compassNames = [8]string{"North", "Northeast", "East", "Southeast", "South", "Southwest", "West", "Northwest"}

// Bearing returns the true-north-referenced compass bearing in degrees
// (0-360, clockwise) from a to b, using the great-circle formula.
func Bearing(a, b LatLng) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLon := (b.Lng - a.Lng) * math.Pi / 180

	x := math.Sin(dLon) * math.Cos(lat2)
	y := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	bearing := math.Atan2(x, y) * 180 / math.Pi
	return math.Mod(bearing+360, 360)
}

// TurnAngle returns the signed angular difference between two bearings,
// normalized to [-180, 180]. Positive means a right turn.
func TurnAngle(from, to float64) float64 {
	angle := to - from
	if angle > 180 {
		angle -= 360
	} else if angle < -180 {
		angle += 360
	}
	return angle
}

// CompassDirection rounds a bearing to the nearest of the 8 compass directions.
func CompassDirection(bearing float64) string {
	idx := int(math.Round(bearing/45)) % 8
	return compassNames[idx]
}
