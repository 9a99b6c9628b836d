package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sheltr/route-engine/pkg/geo"
	"github.com/sheltr/route-engine/pkg/observability"
	osmparser "github.com/sheltr/route-engine/pkg/osm"
)

func main() {
	input := flag.String("input", "", "Path to .osm.pbf file")
	output := flag.String("output", "segments.geojson", "Output GeoJSON segment file path")
	bbox := flag.String("bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng (e.g. 14.40,120.90,14.80,121.20)")
	metroManila := flag.Bool("metro-manila", false, "Shortcut for --bbox 14.30,120.85,14.85,121.20 (Metro Manila bounding box)")
	zone := flag.Int("zone", 51, "UTM zone for the projected segment coordinates")
	southern := flag.Bool("southern", false, "Area is in the southern hemisphere")
	flag.Parse()

	logger := observability.NewLogger("info", "text")

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: import --input <file.osm.pbf> [--output segments.geojson] [--metro-manila | --bbox minLat,minLng,maxLat,maxLng] [--zone N] [--southern]")
		os.Exit(1)
	}

	var opts osmparser.ParseOptions
	if *metroManila {
		opts.BBox = osmparser.BBox{MinLat: 14.30, MaxLat: 14.85, MinLng: 120.85, MaxLng: 121.20}
		logger.Info("using Metro Manila bounding box filter",
			"lat", "[14.30, 14.85]", "lng", "[120.85, 121.20]")
	} else if *bbox != "" {
		var minLat, minLng, maxLat, maxLng float64
		if _, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng); err != nil {
			logger.Error("invalid bbox format, expected minLat,minLng,maxLat,maxLng", "error", err)
			os.Exit(1)
		}
		opts.BBox = osmparser.BBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}
	}

	f, err := os.Open(*input)
	if err != nil {
		logger.Error("failed to open input", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	proj := geo.NewProjection(*zone, !*southern)

	start := time.Now()
	res, err := osmparser.Parse(context.Background(), f, proj, logger, opts)
	if err != nil {
		logger.Error("parse failed", "error", err)
		os.Exit(1)
	}

	fc := osmparser.ToFeatureCollection(res.Segments)

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		logger.Error("marshal failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		logger.Error("write failed", "error", err)
		os.Exit(1)
	}

	logger.Info("import complete",
		"segments", len(fc.Features), "skipped", res.Skipped,
		"output", *output, "took", time.Since(start).Round(time.Millisecond))
}
