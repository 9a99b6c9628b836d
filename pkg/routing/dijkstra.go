package routing

import (
	"errors"
	"math"

	"github.com/sheltr/route-engine/pkg/graph"
)

// ErrNoSuchNode is returned when an endpoint cannot be resolved against the
// graph at all (empty or malformed graph).
var ErrNoSuchNode = errors.New("no such node in graph")

// ErrUnreachable is returned when origin and destination lie in different
// connected components, or the predecessor chain breaks during
// reconstruction. Never silently degraded to a partial route.
var ErrUnreachable = errors.New("destination unreachable from origin")

const noNode = ^uint32(0) // sentinel for "no node"

// SafetyStats aggregates the safety probabilities of a path's segments.
type SafetyStats struct {
	Mean   float64
	Min    float64
	Max    float64
	StdDev float64
}

// PathResult is the output of one shortest-path search. Produced once per
// query and immutable afterwards.
type PathResult struct {
	Nodes       []uint32  // visited node sequence, origin first
	SegmentIDs  []string  // traversed segment identifiers, in order
	EdgeIndices []uint32  // graph edge index per traversed segment
	TotalWeight float64   // summed edge weight under the query's cost mode
	TotalMeters float64   // summed geometric distance
	Safety      SafetyStats
}

// ShortestPath runs Dijkstra from source to target under the given cost
// mode. Weights are non-negative by construction, so a node popped from the
// frontier is final and the search stops as soon as the target pops.
//
// All per-query state is allocated here; concurrent searches over the same
// graph never share anything mutable.
func ShortestPath(g *graph.Graph, source, target uint32, mode graph.CostMode) (*PathResult, error) {
	if g.NumNodes == 0 || source >= g.NumNodes || target >= g.NumNodes {
		return nil, ErrNoSuchNode
	}
	if !g.SameComponent(source, target) {
		return nil, ErrUnreachable
	}

	dist := make([]float64, g.NumNodes)
	pred := make([]uint32, g.NumNodes)
	predEdge := make([]uint32, g.NumNodes)
	for i := range dist {
		dist[i] = math.Inf(1)
		pred[i] = noNode
		predEdge[i] = noNode
	}
	dist[source] = 0

	var pq MinHeap
	pq.Push(source, 0)

	for pq.Len() > 0 {
		cur := pq.Pop()
		if cur.Dist > dist[cur.Node] {
			continue // stale entry
		}
		if cur.Node == target {
			break
		}

		// Relax outgoing edges. Edge order within a node is stable
		// (dataset order), so equal-weight ties resolve to the first
		// discovered edge, deterministically.
		start, end := g.EdgesFrom(cur.Node)
		for e := start; e < end; e++ {
			v := g.Head[e]
			newDist := cur.Dist + g.Weight(e, mode)
			if newDist < dist[v] {
				dist[v] = newDist
				pred[v] = cur.Node
				predEdge[v] = e
				pq.Push(v, newDist)
			}
		}
	}

	if math.IsInf(dist[target], 1) {
		return nil, ErrUnreachable
	}

	return buildResult(g, source, target, dist[target], pred, predEdge)
}

// buildResult walks predecessor pointers back from the target and assembles
// the path with its aggregate statistics.
func buildResult(g *graph.Graph, source, target uint32, totalWeight float64, pred, predEdge []uint32) (*PathResult, error) {
	var nodes []uint32
	var edges []uint32

	node := target
	for node != source {
		nodes = append(nodes, node)
		e := predEdge[node]
		if e == noNode {
			return nil, ErrUnreachable // broken predecessor chain
		}
		edges = append(edges, e)
		node = pred[node]
	}
	nodes = append(nodes, source)

	// Reverse into origin-first order.
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	res := &PathResult{
		Nodes:       nodes,
		EdgeIndices: edges,
		TotalWeight: totalWeight,
	}

	safeties := make([]float64, 0, len(edges))
	for _, e := range edges {
		seg := g.Store.Segments[g.EdgeSeg[e]]
		res.SegmentIDs = append(res.SegmentIDs, seg.ID)
		res.TotalMeters += g.EdgeDist[e]
		safeties = append(safeties, g.EdgeSafety[e])
	}
	res.Safety = safetyStats(safeties)

	return res, nil
}

// safetyStats computes mean/min/max/stddev of the traversed probabilities.
func safetyStats(probs []float64) SafetyStats {
	if len(probs) == 0 {
		return SafetyStats{}
	}

	stats := SafetyStats{Min: probs[0], Max: probs[0]}
	var sum float64
	for _, p := range probs {
		sum += p
		if p < stats.Min {
			stats.Min = p
		}
		if p > stats.Max {
			stats.Max = p
		}
	}
	stats.Mean = sum / float64(len(probs))

	var sq float64
	for _, p := range probs {
		d := p - stats.Mean
		sq += d * d
	}
	stats.StdDev = math.Sqrt(sq / float64(len(probs)))

	return stats
}
