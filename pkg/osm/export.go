package osm

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/sheltr/route-engine/pkg/dataset"
)

// ToFeatureCollection renders segments in the GeoJSON form the dataset
// loader reads back: LineString coordinates in projected UTM meters, keyed
// by the HubName property. Coordinates are written as-is; unprojecting to
// lat/lng here would collapse the loaded graph, since the loader treats
// every coordinate as meters.
func ToFeatureCollection(segments []dataset.Segment) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, seg := range segments {
		line := make(orb.LineString, len(seg.Geometry))
		for i, pt := range seg.Geometry {
			line[i] = orb.Point{pt.X, pt.Y}
		}

		feat := geojson.NewFeature(line)
		feat.Properties["HubName"] = seg.ID
		fc.Append(feat)
	}
	return fc
}
