package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sheltr/route-engine/pkg/api"
	"github.com/sheltr/route-engine/pkg/config"
	"github.com/sheltr/route-engine/pkg/dataset"
	"github.com/sheltr/route-engine/pkg/directions"
	"github.com/sheltr/route-engine/pkg/geo"
	"github.com/sheltr/route-engine/pkg/graph"
	"github.com/sheltr/route-engine/pkg/ingest"
	"github.com/sheltr/route-engine/pkg/observability"
	"github.com/sheltr/route-engine/pkg/routing"
)

// app owns the live engine. Safety updates rebuild the graph off to the
// side and swap the pointer, so in-flight requests finish on the engine
// they started with.
type app struct {
	cfg     *config.Config
	proj    geo.Projection
	logger  *slog.Logger
	metrics *observability.Metrics

	engine atomic.Pointer[routing.Engine]

	mu    sync.Mutex // serializes rebuilds
	store *dataset.Store
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	a := &app{
		cfg:     cfg,
		proj:    geo.NewProjection(cfg.UTMZone, cfg.UTMNorthern),
		logger:  logger,
		metrics: metrics,
	}

	start := time.Now()
	if err := a.loadDataset(); err != nil {
		logger.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}
	a.rebuild(nil)

	g := a.engine.Load().Graph()
	logger.Info("route engine ready",
		"nodes", g.NumNodes, "edges", g.NumEdges,
		"components", g.NumComponents, "skipped_segments", g.Skipped,
		"load_time", time.Since(start).Round(time.Millisecond))

	handlers := api.NewHandlers(a, metrics)
	srv := api.NewServer(api.DefaultConfig(cfg.HTTPAddr), handlers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	var closeReader func() error
	if cfg.KafkaEnabled {
		r := ingest.NewReader(cfg, logger)
		closeReader = r.Close
		updater := ingest.NewUpdater(r, a.applySafetyUpdates,
			cfg.RebuildInterval, clockwork.NewRealClock(), logger, metrics)
		go func() {
			if err := updater.Run(ctx); err != nil {
				logger.Error("safety updater error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if closeReader != nil {
		if err := closeReader(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// loadDataset reads the segment GeoJSON, the optional safety CSV overlay,
// and the optional safe point file.
func (a *app) loadDataset() error {
	f, err := os.Open(a.cfg.SegmentsPath)
	if err != nil {
		return err
	}
	defer f.Close()

	store, err := dataset.LoadSegments(f)
	if err != nil {
		return err
	}
	a.logger.Info("segments loaded",
		"segments", len(store.Segments), "skipped", store.Skipped, "path", a.cfg.SegmentsPath)

	if a.cfg.SafetyCSVPath != "" {
		cf, err := os.Open(a.cfg.SafetyCSVPath)
		if err != nil {
			return err
		}
		applied, unknown, err := store.ApplySafetyCSV(cf)
		cf.Close()
		if err != nil {
			return err
		}
		a.logger.Info("safety scores applied", "applied", applied, "unknown", unknown)
	}

	store.SafePoints = a.loadSafePoints()

	a.store = store
	return nil
}

func (a *app) loadSafePoints() []geo.XY {
	if a.cfg.SafePointsPath == "" {
		return nil
	}
	f, err := os.Open(a.cfg.SafePointsPath)
	if err != nil {
		a.logger.Error("failed to open safe points, evacuation routing disabled",
			"error", err, "path", a.cfg.SafePointsPath)
		return nil
	}
	defer f.Close()

	points, err := dataset.LoadSafePoints(f)
	if err != nil {
		a.logger.Error("failed to parse safe points, evacuation routing disabled", "error", err)
		return nil
	}
	a.logger.Info("safe points loaded", "count", len(points))
	return points
}

// rebuild constructs a fresh graph from the current store, optionally with
// a batch of safety revisions folded in, and swaps it live.
func (a *app) rebuild(updates map[string]float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(updates) > 0 {
		a.store = a.store.WithSafety(updates)
	}

	g := graph.Build(a.store, graph.BuildOptions{MergeTolerance: a.cfg.MergeTolerance})
	a.metrics.ObserveGraph(g.NumNodes, g.NumEdges, g.NumComponents, g.Skipped)

	engine := routing.NewEngine(g, a.proj, a.store.SafePoints, directions.Options{
		TurnThresholdDeg: a.cfg.TurnThresholdDeg,
		WalkingSpeedKmh:  a.cfg.WalkingSpeedKmh,
	}, a.logger)
	a.engine.Store(engine)
}

func (a *app) applySafetyUpdates(updates map[string]float64) {
	start := time.Now()
	a.rebuild(updates)
	a.logger.Info("graph rebuilt with safety updates",
		"segments", len(updates), "took", time.Since(start).Round(time.Millisecond))
}

// FindRoute implements api.RouteFinder against the live engine.
func (a *app) FindRoute(ctx context.Context, origin, destination geo.LatLng, mode graph.CostMode) (*routing.RouteOutcome, error) {
	out, err := a.engine.Load().FindRoute(ctx, origin, destination, mode)
	if err == nil {
		a.metrics.GeometryFallbacks.Add(float64(out.Fallbacks))
	}
	return out, err
}

func (a *app) FindEvacuationRoute(ctx context.Context, origin geo.LatLng, mode graph.CostMode) (*routing.RouteOutcome, error) {
	out, err := a.engine.Load().FindEvacuationRoute(ctx, origin, mode)
	if err == nil {
		a.metrics.GeometryFallbacks.Add(float64(out.Fallbacks))
	}
	return out, err
}

func (a *app) Stats() api.StatsResponse {
	e := a.engine.Load()
	g := e.Graph()
	return api.StatsResponse{
		NumNodes:        g.NumNodes,
		NumEdges:        g.NumEdges,
		NumComponents:   g.NumComponents,
		SegmentsSkipped: g.Skipped,
		SafePoints:      len(e.SafePoints()),
	}
}

func (a *app) EvacuationCenters() []api.LatLngJSON {
	e := a.engine.Load()
	out := make([]api.LatLngJSON, 0, len(e.SafePoints()))
	for _, sp := range e.SafePoints() {
		ll, err := a.proj.ToLatLng(sp)
		if err != nil {
			continue
		}
		out = append(out, api.LatLngJSON{Lat: ll.Lat, Lng: ll.Lng})
	}
	return out
}
