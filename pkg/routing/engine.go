package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sheltr/route-engine/pkg/dataset"
	"github.com/sheltr/route-engine/pkg/directions"
	"github.com/sheltr/route-engine/pkg/geo"
	"github.com/sheltr/route-engine/pkg/geometry"
	"github.com/sheltr/route-engine/pkg/graph"
)

// ErrNoSafePoints is returned when evacuation routing is requested but no
// safe points are configured.
var ErrNoSafePoints = errors.New("no safe points configured")

// RouteOutcome is the success payload of a route query.
type RouteOutcome struct {
	Mode        graph.CostMode
	Path        *PathResult
	Coordinates []geo.LatLng // reconstructed road shape, origin first
	Fallbacks   int          // segments rendered as straight lines
	Steps       []directions.Step
	Summary     directions.Summary
	Degenerate  bool // origin and destination resolved to the same node
}

// Engine ties the four routing stages together over one immutable graph.
// It is safe for concurrent use: every query allocates its own search state
// and only reads the shared graph, snapper, and segment store.
type Engine struct {
	g          *graph.Graph
	snapper    *Snapper
	proj       geo.Projection
	safePoints []geo.XY
	dirOpts    directions.Options
	logger     *slog.Logger
}

// NewEngine creates an Engine for a built graph.
func NewEngine(g *graph.Graph, proj geo.Projection, safePoints []geo.XY, dirOpts directions.Options, logger *slog.Logger) *Engine {
	return &Engine{
		g:          g,
		snapper:    NewSnapper(g),
		proj:       proj,
		safePoints: safePoints,
		dirOpts:    dirOpts,
		logger:     logger,
	}
}

// Graph exposes the engine's graph for stats reporting.
func (e *Engine) Graph() *graph.Graph { return e.g }

// SafePoints returns the configured evacuation points.
func (e *Engine) SafePoints() []geo.XY { return e.safePoints }

// FindRoute computes the lowest-weight path between the nodes nearest to
// origin and destination, reconstructs its road geometry, and synthesizes
// turn-by-turn directions.
//
// Failures are typed values: ErrNoSuchNode when an endpoint cannot be
// resolved, ErrUnreachable when the endpoints lie in different connected
// components. A near-identical origin and destination is not an error; it
// yields a trivial single-step outcome.
func (e *Engine) FindRoute(ctx context.Context, origin, destination geo.LatLng, mode graph.CostMode) (*RouteOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	originXY, err := e.proj.FromLatLng(origin)
	if err != nil {
		return nil, fmt.Errorf("%w: origin %v", ErrNoSuchNode, err)
	}
	destXY, err := e.proj.FromLatLng(destination)
	if err != nil {
		return nil, fmt.Errorf("%w: destination %v", ErrNoSuchNode, err)
	}

	return e.findRouteXY(originXY, destXY, mode)
}

// FindRouteXY is FindRoute for callers already working in projected meters.
func (e *Engine) FindRouteXY(ctx context.Context, origin, destination geo.XY, mode graph.CostMode) (*RouteOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.findRouteXY(origin, destination, mode)
}

func (e *Engine) findRouteXY(origin, destination geo.XY, mode graph.CostMode) (*RouteOutcome, error) {
	src, srcDist, ok := e.snapper.Nearest(origin)
	if !ok {
		return nil, ErrNoSuchNode
	}
	dst, dstDist, _ := e.snapper.Nearest(destination)

	e.logger.Debug("snapped query endpoints",
		"origin_node", src, "origin_snap_m", srcDist,
		"dest_node", dst, "dest_snap_m", dstDist)

	if src == dst {
		return e.degenerateOutcome(src, mode)
	}

	path, err := ShortestPath(e.g, src, dst, mode)
	if err != nil {
		return nil, err
	}

	segs := make([]dataset.Segment, len(path.EdgeIndices))
	nodes := make([]geo.XY, len(path.Nodes))
	for i, eIdx := range path.EdgeIndices {
		segs[i] = e.g.Store.Segments[e.g.EdgeSeg[eIdx]]
	}
	for i, n := range path.Nodes {
		x, y := e.g.NodeXY(n)
		nodes[i] = geo.XY{X: x, Y: y}
	}

	geom, err := geometry.Reconstruct(segs, nodes, e.proj, e.logger)
	if err != nil {
		return nil, fmt.Errorf("reconstruct geometry: %w", err)
	}
	if geom.Fallbacks > 0 {
		e.logger.Warn("route uses straight-line geometry fallback",
			"segments", geom.Fallbacks, "total", len(segs))
	}

	steps := directions.Generate(geom.Coordinates, e.dirOpts)

	return &RouteOutcome{
		Mode:        mode,
		Path:        path,
		Coordinates: geom.Coordinates,
		Fallbacks:   geom.Fallbacks,
		Steps:       steps,
		Summary:     directions.Summarize(steps, e.dirOpts),
	}, nil
}

// degenerateOutcome handles an origin and destination snapping to the same
// node: a one-step "already there" result, not an error.
func (e *Engine) degenerateOutcome(node uint32, mode graph.CostMode) (*RouteOutcome, error) {
	x, y := e.g.NodeXY(node)
	ll, err := e.proj.ToLatLng(geo.XY{X: x, Y: y})
	if err != nil {
		return nil, fmt.Errorf("project node %d: %w", node, err)
	}

	steps := directions.Generate([]geo.LatLng{ll}, e.dirOpts)
	return &RouteOutcome{
		Mode: mode,
		// SegmentIDs stays non-nil so the serialized payload carries an
		// empty array like every other success response.
		Path:        &PathResult{Nodes: []uint32{node}, SegmentIDs: []string{}},
		Coordinates: []geo.LatLng{ll},
		Steps:       steps,
		Summary:     directions.Summarize(steps, e.dirOpts),
		Degenerate:  true,
	}, nil
}

// FindEvacuationRoute routes from origin to the nearest configured safe
// point by straight-line distance in the projected plane.
func (e *Engine) FindEvacuationRoute(ctx context.Context, origin geo.LatLng, mode graph.CostMode) (*RouteOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(e.safePoints) == 0 {
		return nil, ErrNoSafePoints
	}

	originXY, err := e.proj.FromLatLng(origin)
	if err != nil {
		return nil, fmt.Errorf("%w: origin %v", ErrNoSuchNode, err)
	}

	best := e.safePoints[0]
	bestDist := geo.Dist(originXY, best)
	for _, sp := range e.safePoints[1:] {
		if d := geo.Dist(originXY, sp); d < bestDist {
			best, bestDist = sp, d
		}
	}
	e.logger.Debug("nearest safe point selected", "distance_m", bestDist)

	return e.findRouteXY(originXY, best, mode)
}

// CompareModes runs one independent search per cost mode for the same
// endpoints. Modes whose search fails are absent from the result; the error
// of the last failing mode is returned alongside when all fail.
func (e *Engine) CompareModes(ctx context.Context, origin, destination geo.LatLng) (map[graph.CostMode]*RouteOutcome, error) {
	modes := []graph.CostMode{graph.CostDistance, graph.CostSafety, graph.CostCombined, graph.CostFloodRisk}

	results := make(map[graph.CostMode]*RouteOutcome, len(modes))
	var lastErr error
	for _, mode := range modes {
		outcome, err := e.FindRoute(ctx, origin, destination, mode)
		if err != nil {
			lastErr = err
			e.logger.Debug("mode comparison search failed", "mode", mode, "error", err)
			continue
		}
		results[mode] = outcome
	}

	if len(results) == 0 {
		return nil, lastErr
	}
	return results, nil
}
