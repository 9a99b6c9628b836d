package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/sheltr/route-engine/pkg/geo"
)

// Property names used by the segments dataset.
const (
	propSegmentID = "HubName"
	propSafety    = "pred_prob_safe"
)

// LoadSegments reads a GeoJSON FeatureCollection of road segments. Each
// feature needs a HubName identifier and a LineString or MultiLineString
// geometry in projected coordinates; pred_prob_safe is optional. Malformed
// features are skipped and counted, never abort the load.
func LoadSegments(r io.Reader) (*Store, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read segments: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse segments geojson: %w", err)
	}

	store := &Store{}
	for _, f := range fc.Features {
		seg, ok := featureToSegment(f)
		if !ok {
			store.Skipped++
			continue
		}
		store.Segments = append(store.Segments, seg)
	}
	store.reindex()
	return store, nil
}

// featureToSegment converts one GeoJSON feature. Returns false for records
// missing an identifier or a usable line geometry.
func featureToSegment(f *geojson.Feature) (Segment, bool) {
	id, ok := propertyID(f.Properties)
	if !ok {
		return Segment{}, false
	}

	points := lineGeometry(f.Geometry)
	if len(points) < 2 {
		return Segment{}, false
	}

	seg := Segment{
		ID:       id,
		From:     points[0],
		To:       points[len(points)-1],
		Geometry: points,
	}
	if raw, present := f.Properties[propSafety]; present {
		if prob, ok := toFloat(raw); ok && prob >= 0 && prob <= 1 {
			seg.Safety = prob
			seg.HasSafety = true
		}
	}
	return seg, true
}

// propertyID extracts the segment identifier, which appears as either a
// string or a number depending on which tool exported the dataset.
func propertyID(props geojson.Properties) (string, bool) {
	raw, present := props[propSegmentID]
	if !present {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case float64:
		return strconv.FormatInt(int64(v), 10), true
	case int:
		return strconv.Itoa(v), true
	default:
		return "", false
	}
}

// lineGeometry flattens a LineString or MultiLineString into projected points.
func lineGeometry(g orb.Geometry) []geo.XY {
	switch geom := g.(type) {
	case orb.LineString:
		return lineToXY(geom)
	case orb.MultiLineString:
		var pts []geo.XY
		for _, line := range geom {
			pts = append(pts, lineToXY(line)...)
		}
		return pts
	default:
		return nil
	}
}

func lineToXY(line orb.LineString) []geo.XY {
	pts := make([]geo.XY, len(line))
	for i, p := range line {
		pts[i] = geo.XY{X: p.X(), Y: p.Y()}
	}
	return pts
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// ApplySafetyCSV merges a precomputed safety-weight lookup into the store.
// The CSV must carry HubName and pred_prob_safe columns. Returns how many
// segments were updated and how many rows referenced unknown segments.
func (s *Store) ApplySafetyCSV(r io.Reader) (applied, unknown int, err error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("read safety csv header: %w", err)
	}

	idCol, probCol := -1, -1
	for i, name := range header {
		switch name {
		case propSegmentID:
			idCol = i
		case propSafety:
			probCol = i
		}
	}
	if idCol < 0 || probCol < 0 {
		return 0, 0, fmt.Errorf("safety csv missing %s or %s column", propSegmentID, propSafety)
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return applied, unknown, fmt.Errorf("read safety csv: %w", err)
		}
		if idCol >= len(record) || probCol >= len(record) {
			unknown++
			continue
		}
		prob, perr := strconv.ParseFloat(record[probCol], 64)
		if perr != nil || prob < 0 || prob > 1 {
			unknown++
			continue
		}
		idx, ok := s.byID[normalizeID(record[idCol])]
		if !ok {
			unknown++
			continue
		}
		s.Segments[idx].Safety = prob
		s.Segments[idx].HasSafety = true
		applied++
	}
	return applied, unknown, nil
}

// normalizeID strips a trailing ".0" that shows up when numeric identifiers
// pass through floating-point columns.
func normalizeID(id string) string {
	if f, err := strconv.ParseFloat(id, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return id
}

// LoadSafePoints reads a GeoJSON FeatureCollection of evacuation points in
// projected coordinates. Polygon features contribute their bound center;
// other non-point geometries are dropped.
func LoadSafePoints(r io.Reader) ([]geo.XY, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read safepoints: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse safepoints geojson: %w", err)
	}

	var pts []geo.XY
	for _, f := range fc.Features {
		switch geom := f.Geometry.(type) {
		case orb.Point:
			pts = append(pts, geo.XY{X: geom.X(), Y: geom.Y()})
		case orb.Polygon:
			c := geom.Bound().Center()
			pts = append(pts, geo.XY{X: c.X(), Y: c.Y()})
		case orb.MultiPolygon:
			c := geom.Bound().Center()
			pts = append(pts, geo.XY{X: c.X(), Y: c.Y()})
		}
	}
	return pts, nil
}
