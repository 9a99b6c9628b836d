package geo

import (
	"fmt"

	utm "github.com/im7mortal/UTM"
)

// Projection converts between a fixed UTM zone and geographic coordinates.
// The road network dataset is stored in projected meters (the original data
// is EPSG:32651, UTM zone 51N covering Metro Manila); all display output is
// WGS84 lat/lng. A spherical linear approximation is not acceptable here:
// it drifts by meters to tens of meters over route-length distances.
type Projection struct {
	Zone     int
	Northern bool
}

// NewProjection creates a Projection for the given UTM zone.
func NewProjection(zone int, northern bool) Projection {
	return Projection{Zone: zone, Northern: northern}
}

// ToLatLng transforms a projected point into geographic coordinates.
func (p Projection) ToLatLng(pt XY) (LatLng, error) {
	lat, lng, err := utm.ToLatLon(pt.X, pt.Y, p.Zone, "", p.Northern)
	if err != nil {
		return LatLng{}, fmt.Errorf("utm to lat/lng (%.1f, %.1f): %w", pt.X, pt.Y, err)
	}
	return LatLng{Lat: lat, Lng: lng}, nil
}

// FromLatLng transforms geographic coordinates into the projection's UTM zone.
// Points whose natural zone differs from the configured one are outside the
// network's coverage area and are rejected.
func (p Projection) FromLatLng(ll LatLng) (XY, error) {
	easting, northing, zone, _, err := utm.FromLatLon(ll.Lat, ll.Lng, p.Northern)
	if err != nil {
		return XY{}, fmt.Errorf("lat/lng to utm (%.5f, %.5f): %w", ll.Lat, ll.Lng, err)
	}
	if zone != p.Zone {
		return XY{}, fmt.Errorf("point (%.5f, %.5f) falls in UTM zone %d, network uses zone %d", ll.Lat, ll.Lng, zone, p.Zone)
	}
	return XY{X: easting, Y: northing}, nil
}
