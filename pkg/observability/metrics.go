package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// route engine.
type Metrics struct {
	RouteRequests *prometheus.CounterVec   // labels: mode={distance,safety,combined,flood_risk}, outcome={success,unreachable,bad_input,error}
	RouteDuration *prometheus.HistogramVec // labels: mode

	// Graph state, refreshed after every build.
	GraphNodes      prometheus.Gauge
	GraphEdges      prometheus.Gauge
	GraphComponents prometheus.Gauge
	SegmentsSkipped prometheus.Gauge

	GeometryFallbacks prometheus.Counter
	SafetyUpdates     prometheus.Counter
	GraphRebuilds     prometheus.Counter
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RouteRequests,
		m.RouteDuration,
		m.GraphNodes,
		m.GraphEdges,
		m.GraphComponents,
		m.SegmentsSkipped,
		m.GeometryFallbacks,
		m.SafetyUpdates,
		m.GraphRebuilds,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RouteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "route_engine",
			Name:      "route_requests_total",
			Help:      "Route queries by cost mode and outcome.",
		}, []string{"mode", "outcome"}),
		RouteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "route_engine",
			Name:      "route_duration_seconds",
			Help:      "End-to-end route query duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"mode"}),
		GraphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "route_engine",
			Name:      "graph_nodes",
			Help:      "Number of intersection nodes in the active graph.",
		}),
		GraphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "route_engine",
			Name:      "graph_edges",
			Help:      "Number of directed edges in the active graph.",
		}),
		GraphComponents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "route_engine",
			Name:      "graph_components",
			Help:      "Number of connected components in the active graph.",
		}),
		SegmentsSkipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "route_engine",
			Name:      "segments_skipped",
			Help:      "Input segments dropped as malformed during the last build.",
		}),
		GeometryFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "route_engine",
			Name:      "geometry_fallbacks_total",
			Help:      "Route segments rendered as straight lines because detailed geometry was missing.",
		}),
		SafetyUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "route_engine",
			Name:      "safety_updates_total",
			Help:      "Safety score updates consumed from the update stream.",
		}),
		GraphRebuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "route_engine",
			Name:      "graph_rebuilds_total",
			Help:      "Graph rebuilds triggered by safety score updates.",
		}),
	}
}

// ObserveGraph refreshes the graph gauges after a build or rebuild.
func (m *Metrics) ObserveGraph(nodes, edges, components uint32, skipped int) {
	m.GraphNodes.Set(float64(nodes))
	m.GraphEdges.Set(float64(edges))
	m.GraphComponents.Set(float64(components))
	m.SegmentsSkipped.Set(float64(skipped))
}
