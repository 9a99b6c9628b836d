package osm

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"github.com/sheltr/route-engine/pkg/dataset"
	"github.com/sheltr/route-engine/pkg/geo"
)

// footHighways lists highway tag values walkable on foot.
var footHighways = map[string]bool{
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
	"pedestrian":     true,
	"footway":        true,
	"path":           true,
	"steps":          true,
	"track":          true,
	"cycleway":       true,
}

// isFootAccessible returns true if the way is walkable.
func isFootAccessible(tags osm.Tags) bool {
	hw := tags.Find("highway")
	if !footHighways[hw] {
		return false
	}

	// Cycleways only when foot traffic is explicitly allowed.
	if hw == "cycleway" {
		foot := tags.Find("foot")
		return foot == "yes" || foot == "designated" || foot == "permissive"
	}

	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	if tags.Find("foot") == "no" {
		return false
	}

	return true
}

// BBox defines a geographic bounding box for filtering.
// If non-zero, only segments fully inside the box are kept.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ParseOptions configures the OSM parser.
type ParseOptions struct {
	BBox BBox // if non-zero, filter segments to this bounding box
}

// ParseResult holds the output of parsing an OSM PBF file.
type ParseResult struct {
	Segments []dataset.Segment
	Skipped  int // way parts dropped for missing coordinates or projection failures
}

// wayInfo holds parsed way data collected during pass 1.
type wayInfo struct {
	ID      osm.WayID
	NodeIDs []osm.NodeID
}

// Parse reads an OSM PBF file and returns walkable road segments projected
// into the given UTM zone. Ways are split at junction nodes, so every
// emitted segment runs intersection to intersection with its intermediate
// shape points preserved as geometry.
//
// The reader is consumed twice (seeks back to start for the second pass),
// so it must implement io.ReadSeeker.
func Parse(ctx context.Context, rs io.ReadSeeker, proj geo.Projection, logger *slog.Logger, opts ...ParseOptions) (*ParseResult, error) {
	var opt ParseOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	useBBox := !opt.BBox.IsZero()

	// Pass 1: Scan ways to collect walkable ways and per-node usage counts.
	// A node used by two ways, or used twice within one way, is a junction.
	nodeUse := make(map[osm.NodeID]int)
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		if !isFootAccessible(w.Tags) || len(w.Nodes) < 2 {
			continue
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			nodeUse[wn.ID]++
		}
		ways = append(ways, wayInfo{ID: w.ID, NodeIDs: nodeIDs})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()

	logger.Info("pass 1 complete", "ways", len(ways), "referenced_nodes", len(nodeUse))

	// Pass 2: Scan nodes to collect coordinates for referenced nodes only.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	nodeLat := make(map[osm.NodeID]float64, len(nodeUse))
	nodeLon := make(map[osm.NodeID]float64, len(nodeUse))

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := nodeUse[n.ID]; !needed {
			continue
		}
		nodeLat[n.ID] = n.Lat
		nodeLon[n.ID] = n.Lon
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()

	logger.Info("pass 2 complete", "node_coordinates", len(nodeLat))

	res := &ParseResult{}
	for _, w := range ways {
		res.splitWay(w, nodeUse, nodeLat, nodeLon, proj, opt.BBox, useBBox)
	}

	if res.Skipped > 0 {
		logger.Warn("dropped way parts", "count", res.Skipped)
	}
	logger.Info("parse complete", "segments", len(res.Segments))

	return res, nil
}

// splitWay cuts a way at junction nodes and emits one segment per part.
func (r *ParseResult) splitWay(w wayInfo, nodeUse map[osm.NodeID]int, nodeLat, nodeLon map[osm.NodeID]float64, proj geo.Projection, bbox BBox, useBBox bool) {
	part := 0
	start := 0
	for i := 1; i < len(w.NodeIDs); i++ {
		last := i == len(w.NodeIDs)-1
		if nodeUse[w.NodeIDs[i]] > 1 || last {
			r.emitPart(w, start, i, part, nodeLat, nodeLon, proj, bbox, useBBox)
			part++
			start = i
		}
	}
}

func (r *ParseResult) emitPart(w wayInfo, start, end, part int, nodeLat, nodeLon map[osm.NodeID]float64, proj geo.Projection, bbox BBox, useBBox bool) {
	geomPts := make([]geo.XY, 0, end-start+1)
	for _, id := range w.NodeIDs[start : end+1] {
		lat, latOK := nodeLat[id]
		lon, lonOK := nodeLon[id]
		if !latOK || !lonOK {
			r.Skipped++
			return
		}
		if useBBox && !bbox.Contains(lat, lon) {
			return // outside the area of interest, not an error
		}
		pt, err := proj.FromLatLng(geo.LatLng{Lat: lat, Lng: lon})
		if err != nil {
			r.Skipped++
			return
		}
		geomPts = append(geomPts, pt)
	}
	if len(geomPts) < 2 {
		r.Skipped++
		return
	}

	r.Segments = append(r.Segments, dataset.Segment{
		ID:       fmt.Sprintf("w%d.%d", w.ID, part),
		From:     geomPts[0],
		To:       geomPts[len(geomPts)-1],
		Geometry: geomPts,
	})
}
