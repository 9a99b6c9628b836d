package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const segmentsGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"HubName": "1001", "pred_prob_safe": 0.92},
      "geometry": {"type": "LineString", "coordinates": [[287000, 1617000], [287050, 1617040], [287100, 1617100]]}
    },
    {
      "type": "Feature",
      "properties": {"HubName": 1002.0},
      "geometry": {"type": "MultiLineString", "coordinates": [[[287100, 1617100], [287200, 1617100]]]}
    },
    {
      "type": "Feature",
      "properties": {"pred_prob_safe": 0.5},
      "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}
    },
    {
      "type": "Feature",
      "properties": {"HubName": "1003"},
      "geometry": {"type": "Point", "coordinates": [287000, 1617000]}
    }
  ]
}`

func TestLoadSegments(t *testing.T) {
	store, err := LoadSegments(strings.NewReader(segmentsGeoJSON))
	require.NoError(t, err)

	// Two valid segments; the missing-id and point-geometry features are skipped.
	require.Len(t, store.Segments, 2)
	assert.Equal(t, 2, store.Skipped)

	seg, ok := store.SegmentByID("1001")
	require.True(t, ok)
	assert.True(t, seg.HasSafety)
	assert.InDelta(t, 0.92, seg.Safety, 1e-9)
	assert.Len(t, seg.Geometry, 3)
	assert.Equal(t, 287000.0, seg.From.X)
	assert.Equal(t, 287100.0, seg.To.X)

	// Numeric HubName is normalized to an integer string.
	seg, ok = store.SegmentByID("1002")
	require.True(t, ok)
	assert.False(t, seg.HasSafety)
}

func TestApplySafetyCSV(t *testing.T) {
	store, err := LoadSegments(strings.NewReader(segmentsGeoJSON))
	require.NoError(t, err)

	csvData := "HubName,pred_prob_safe\n1002.0,0.35\n9999,0.5\n1001,1.5\n"
	applied, unknown, err := store.ApplySafetyCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, 2, unknown) // unknown id and out-of-range probability

	seg, _ := store.SegmentByID("1002")
	assert.True(t, seg.HasSafety)
	assert.InDelta(t, 0.35, seg.Safety, 1e-9)
}

func TestWithSafetyLeavesOriginalUntouched(t *testing.T) {
	store, err := LoadSegments(strings.NewReader(segmentsGeoJSON))
	require.NoError(t, err)

	updated := store.WithSafety(map[string]float64{"1002": 0.1, "missing": 0.9})

	orig, _ := store.SegmentByID("1002")
	assert.False(t, orig.HasSafety)

	upd, _ := updated.SegmentByID("1002")
	assert.True(t, upd.HasSafety)
	assert.InDelta(t, 0.1, upd.Safety, 1e-9)
}

func TestLoadSafePoints(t *testing.T) {
	data := `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "Evac A"}, "geometry": {"type": "Point", "coordinates": [287500, 1617500]}},
    {"type": "Feature", "properties": {}, "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}}
  ]
}`
	pts, err := LoadSafePoints(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, 287500.0, pts[0].X)
	assert.Equal(t, 5.0, pts[1].X) // polygon contributes its bound center
}
