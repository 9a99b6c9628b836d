package geometry

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheltr/route-engine/pkg/dataset"
	"github.com/sheltr/route-engine/pkg/geo"
)

// Manila-area base offsets keep test coordinates inside UTM zone 51N.
const (
	baseX = 287_000.0
	baseY = 1_617_000.0
)

var testProj = geo.NewProjection(51, true)

func xy(dx, dy float64) geo.XY {
	return geo.XY{X: baseX + dx, Y: baseY + dy}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReconstructThreePointGeometry(t *testing.T) {
	seg := dataset.Segment{
		ID:       "s1",
		From:     xy(0, 0),
		To:       xy(200, 0),
		Geometry: []geo.XY{xy(0, 0), xy(100, 100), xy(200, 0)},
	}

	// Forward traversal: entry at the stored first point.
	res, err := Reconstruct([]dataset.Segment{seg}, []geo.XY{xy(0, 0), xy(200, 0)}, testProj, testLogger())
	require.NoError(t, err)
	require.Len(t, res.Coordinates, 3)
	assert.Equal(t, 0, res.Fallbacks)

	// The middle point sits ~100m north of the endpoints.
	assert.Greater(t, res.Coordinates[1].Lat, res.Coordinates[0].Lat)
	assert.Greater(t, res.Coordinates[2].Lng, res.Coordinates[0].Lng)

	// Reverse traversal: the stored point order flips.
	rev, err := Reconstruct([]dataset.Segment{seg}, []geo.XY{xy(200, 0), xy(0, 0)}, testProj, testLogger())
	require.NoError(t, err)
	require.Len(t, rev.Coordinates, 3)
	assert.InDelta(t, res.Coordinates[0].Lng, rev.Coordinates[2].Lng, 1e-9)
	assert.InDelta(t, res.Coordinates[2].Lng, rev.Coordinates[0].Lng, 1e-9)
	assert.InDelta(t, res.Coordinates[1].Lat, rev.Coordinates[1].Lat, 1e-9)
}

func TestReconstructFallbackStraightLine(t *testing.T) {
	segs := []dataset.Segment{
		{ID: "curved", From: xy(0, 0), To: xy(100, 0), Geometry: []geo.XY{xy(0, 0), xy(50, 20), xy(100, 0)}},
		{ID: "bare", From: xy(100, 0), To: xy(200, 0)}, // no stored geometry
	}
	nodes := []geo.XY{xy(0, 0), xy(100, 0), xy(200, 0)}

	res, err := Reconstruct(segs, nodes, testProj, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Fallbacks)
	// 3 curved points + 2 fallback endpoints, shared endpoint preserved twice.
	assert.Len(t, res.Coordinates, 5)
}

func TestReconstructMultiSegmentContinuity(t *testing.T) {
	// Second segment stored backwards relative to travel direction.
	segs := []dataset.Segment{
		{ID: "a", From: xy(0, 0), To: xy(100, 0), Geometry: []geo.XY{xy(0, 0), xy(100, 0)}},
		{ID: "b", From: xy(200, 0), To: xy(100, 0), Geometry: []geo.XY{xy(200, 0), xy(150, 30), xy(100, 0)}},
	}
	nodes := []geo.XY{xy(0, 0), xy(100, 0), xy(200, 0)}

	res, err := Reconstruct(segs, nodes, testProj, testLogger())
	require.NoError(t, err)
	require.Len(t, res.Coordinates, 5)

	// Longitude must increase monotonically along the stitched polyline
	// (heading due east); the reversed segment b was flipped.
	for i := 1; i < len(res.Coordinates); i++ {
		assert.GreaterOrEqual(t, res.Coordinates[i].Lng, res.Coordinates[i-1].Lng,
			"point %d out of order", i)
	}
}

func TestReconstructNodeCountMismatch(t *testing.T) {
	_, err := Reconstruct([]dataset.Segment{{ID: "x"}}, []geo.XY{xy(0, 0)}, testProj, testLogger())
	require.Error(t, err)
}
