package graph

import (
	"math"
	"sort"

	"github.com/sheltr/route-engine/pkg/dataset"
	"github.com/sheltr/route-engine/pkg/geo"
)

// DefaultMergeTolerance is the endpoint quantization grid size in meters.
// Endpoints within the same grid cell collapse into one intersection node.
// Too loose merges unrelated intersections; too tight fragments the network
// into disconnected components.
const DefaultMergeTolerance = 1.0

// BuildOptions configures graph construction.
type BuildOptions struct {
	// MergeTolerance overrides DefaultMergeTolerance when > 0.
	MergeTolerance float64
}

// nodeKey is a quantized endpoint coordinate. Two segments sharing an
// endpoint within the merge tolerance hash to the same key.
type nodeKey struct {
	X int64
	Y int64
}

func quantize(pt geo.XY, tol float64) nodeKey {
	return nodeKey{
		X: int64(math.Round(pt.X / tol)),
		Y: int64(math.Round(pt.Y / tol)),
	}
}

// Build creates a CSR Graph from the store's segments.
//
// Segments with non-finite coordinates are skipped and counted. A segment
// whose endpoints quantize to the same node is kept as a self-loop; callers
// needing simple paths filter those themselves. Parallel segments between
// the same node pair stay separate edges.
func Build(store *dataset.Store, opts BuildOptions) *Graph {
	tol := opts.MergeTolerance
	if tol <= 0 {
		tol = DefaultMergeTolerance
	}

	g := &Graph{Store: store, Skipped: store.Skipped}

	// Step 1: Quantize endpoints into compact node indices, preserving
	// first-encountered order for deterministic node numbering.
	nodeSet := make(map[nodeKey]uint32)
	var nodeX, nodeY []float64

	addNode := func(pt geo.XY) uint32 {
		key := quantize(pt, tol)
		if idx, ok := nodeSet[key]; ok {
			return idx
		}
		idx := uint32(len(nodeX))
		nodeSet[key] = idx
		nodeX = append(nodeX, pt.X)
		nodeY = append(nodeY, pt.Y)
		return idx
	}

	// Step 2: Build the directed edge list. Each segment contributes both
	// directions (the network is walked, not driven); self-loops once.
	type rawEdge struct {
		from, to uint32
		seg      int32
		dist     float64
		safety   float64
	}
	var raw []rawEdge

	for i := range store.Segments {
		seg := &store.Segments[i]
		if !finiteXY(seg.From) || !finiteXY(seg.To) {
			g.Skipped++
			continue
		}

		from := addNode(seg.From)
		to := addNode(seg.To)

		dist := geo.Dist(seg.From, seg.To)
		if len(seg.Geometry) >= 2 {
			dist = geo.PolylineLength(seg.Geometry)
		}
		safety := DefaultSafety
		if seg.HasSafety {
			safety = seg.Safety
		}

		raw = append(raw, rawEdge{from: from, to: to, seg: int32(i), dist: dist, safety: safety})
		if from != to {
			raw = append(raw, rawEdge{from: to, to: from, seg: int32(i), dist: dist, safety: safety})
		}
	}

	numNodes := uint32(len(nodeX))
	numEdges := uint32(len(raw))

	// Step 3: Sort edges by source node. The sort is stable so that edges
	// out of a node keep dataset order, which fixes tie-breaks for
	// reproducible searches.
	sort.SliceStable(raw, func(i, j int) bool {
		return raw[i].from < raw[j].from
	})

	// Step 4: Build CSR arrays.
	firstOut := make([]uint32, numNodes+1)
	head := make([]uint32, numEdges)
	edgeSeg := make([]int32, numEdges)
	edgeDist := make([]float64, numEdges)
	edgeSafety := make([]float64, numEdges)

	for i, e := range raw {
		head[i] = e.to
		edgeSeg[i] = e.seg
		edgeDist[i] = e.dist
		edgeSafety[i] = e.safety
	}

	for _, e := range raw {
		firstOut[e.from+1]++
	}
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	g.NumNodes = numNodes
	g.NumEdges = numEdges
	g.FirstOut = firstOut
	g.Head = head
	g.EdgeSeg = edgeSeg
	g.EdgeDist = edgeDist
	g.EdgeSafety = edgeSafety
	g.NodeX = nodeX
	g.NodeY = nodeY

	// Step 5: Label connected components so searches can reject
	// cross-component queries before exploring anything.
	g.Component, g.NumComponents = labelComponents(g)

	return g
}

func finiteXY(pt geo.XY) bool {
	return !math.IsNaN(pt.X) && !math.IsInf(pt.X, 0) &&
		!math.IsNaN(pt.Y) && !math.IsInf(pt.Y, 0)
}
