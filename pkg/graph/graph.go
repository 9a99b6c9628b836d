package graph

import "github.com/sheltr/route-engine/pkg/dataset"

// Graph represents the road network in CSR (Compressed Sparse Row) format.
// Every dataset segment becomes a pair of directed edges between its two
// quantized endpoint nodes (one edge for a self-loop). The structure is
// built once and never mutated afterwards, so concurrent searches can share
// it without locking; per-query state lives in the routing package.
type Graph struct {
	NumNodes uint32
	NumEdges uint32
	FirstOut []uint32 // len: NumNodes + 1; FirstOut[i]..FirstOut[i+1] are edges from node i
	Head     []uint32 // len: NumEdges; target node for each edge

	EdgeSeg    []int32   // len: NumEdges; index into Store.Segments
	EdgeDist   []float64 // len: NumEdges; geometric length in meters
	EdgeSafety []float64 // len: NumEdges; safety probability, defaulted when absent

	NodeX []float64 // len: NumNodes; projected coordinates
	NodeY []float64

	// Component[i] is the connected-component label of node i, in [0, NumComponents).
	Component     []uint32
	NumComponents uint32

	Store   *dataset.Store // segment source of truth for geometry lookup
	Skipped int            // malformed segments dropped during build (includes loader skips)
}

// EdgesFrom returns the range of edge indices for edges originating from node u.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}

// NodeXY returns the projected coordinates of node u.
func (g *Graph) NodeXY(u uint32) (x, y float64) {
	return g.NodeX[u], g.NodeY[u]
}

// SameComponent reports whether two nodes are mutually reachable.
func (g *Graph) SameComponent(u, v uint32) bool {
	return g.Component[u] == g.Component[v]
}

// Weight returns edge e's weight under the given cost mode. Weights are
// derived on demand from the per-edge (distance, safety) pair so that one
// immutable graph serves all cost modes.
func (g *Graph) Weight(e uint32, mode CostMode) float64 {
	return mode.Weight(g.EdgeDist[e], g.EdgeSafety[e])
}
