package routing

import (
	"github.com/tidwall/rtree"

	"github.com/sheltr/route-engine/pkg/geo"
	"github.com/sheltr/route-engine/pkg/graph"
)

// Snapper resolves arbitrary projected coordinates to their Euclidean
// nearest graph node using an R-tree over the node set. The index is built
// once per graph and is read-only afterwards, safe for concurrent queries.
type Snapper struct {
	tr rtree.RTreeG[uint32]
	g  *graph.Graph
}

// NewSnapper indexes all node coordinates of the graph.
func NewSnapper(g *graph.Graph) *Snapper {
	s := &Snapper{g: g}
	for u := uint32(0); u < g.NumNodes; u++ {
		pt := [2]float64{g.NodeX[u], g.NodeY[u]}
		s.tr.Insert(pt, pt, u)
	}
	return s
}

// Nearest returns the closest node to pt and its distance in meters.
// Equal-distance ties resolve to the lowest node index, which keeps results
// deterministic regardless of index insertion internals. Returns false only
// for an empty graph.
func (s *Snapper) Nearest(pt geo.XY) (uint32, float64, bool) {
	if s.g.NumNodes == 0 {
		return 0, 0, false
	}

	target := [2]float64{pt.X, pt.Y}
	best := noNode
	bestRank := 0.0
	first := true

	// Nearby yields nodes in increasing distance order; scan until the
	// rank rises past the first hit to collect all equal-distance ties.
	s.tr.Nearby(
		rtree.BoxDist[float64, uint32](target, target, nil),
		func(_, _ [2]float64, node uint32, rank float64) bool {
			if first {
				best, bestRank, first = node, rank, false
				return true
			}
			if rank > bestRank {
				return false
			}
			if node < best {
				best = node
			}
			return true
		},
	)

	x, y := s.g.NodeXY(best)
	return best, geo.Dist(pt, geo.XY{X: x, Y: y}), true
}
