package geometry

import (
	"fmt"
	"log/slog"

	"github.com/sheltr/route-engine/pkg/dataset"
	"github.com/sheltr/route-engine/pkg/geo"
)

// Result is the reconstructed display geometry of a path.
type Result struct {
	// Coordinates traces the true road shape in geographic coordinates,
	// origin first. Consecutive duplicates at shared segment endpoints are
	// preserved; direction synthesis ignores the zero-length legs.
	Coordinates []geo.LatLng

	// Fallbacks counts segments whose stored geometry was missing, so a
	// straight endpoint line was substituted. The route is still usable,
	// just visually degraded.
	Fallbacks int
}

// Reconstruct maps an ordered traversed-segment sequence back to real road
// geometry. nodes holds the projected coordinates of the path's nodes, one
// more entry than segments; each segment's stored polyline is emitted in
// traversal direction, determined by which stored endpoint lies closer to
// the segment's entry node.
func Reconstruct(segments []dataset.Segment, nodes []geo.XY, proj geo.Projection, logger *slog.Logger) (*Result, error) {
	if len(nodes) != len(segments)+1 {
		return nil, fmt.Errorf("geometry: %d nodes for %d segments, want %d", len(nodes), len(segments), len(segments)+1)
	}

	// Work over a snapshot so a caller-held slice can't shift under the
	// traversal.
	segs := make([]dataset.Segment, len(segments))
	copy(segs, segments)

	res := &Result{}
	for i := range segs {
		pts := segs[i].Geometry
		if len(pts) < 2 {
			// Degraded-quality fallback: straight line between endpoints.
			pts = []geo.XY{segs[i].From, segs[i].To}
			res.Fallbacks++
			logger.Warn("segment geometry unavailable, using straight line",
				"segment_id", segs[i].ID)
		}

		pts = orient(pts, nodes[i])
		for _, pt := range pts {
			ll, err := proj.ToLatLng(pt)
			if err != nil {
				return nil, fmt.Errorf("segment %s: %w", segs[i].ID, err)
			}
			res.Coordinates = append(res.Coordinates, ll)
		}
	}

	return res, nil
}

// orient returns pts ordered so the list starts at the end nearer to entry.
// A segment may be walked against its stored point order; flipping here keeps
// the stitched polyline continuous.
func orient(pts []geo.XY, entry geo.XY) []geo.XY {
	first := pts[0]
	last := pts[len(pts)-1]
	if geo.Dist(first, entry) <= geo.Dist(last, entry) {
		return pts
	}

	rev := make([]geo.XY, len(pts))
	for i, p := range pts {
		rev[len(pts)-1-i] = p
	}
	return rev
}
