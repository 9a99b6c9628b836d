package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"mime"
	"net/http"
	"time"

	"github.com/sheltr/route-engine/pkg/geo"
	"github.com/sheltr/route-engine/pkg/graph"
	"github.com/sheltr/route-engine/pkg/observability"
	"github.com/sheltr/route-engine/pkg/routing"
)

// RouteFinder is the engine surface the handlers need. The server process
// swaps engines atomically when safety updates arrive, so handlers go
// through this indirection instead of holding a *routing.Engine.
type RouteFinder interface {
	FindRoute(ctx context.Context, origin, destination geo.LatLng, mode graph.CostMode) (*routing.RouteOutcome, error)
	FindEvacuationRoute(ctx context.Context, origin geo.LatLng, mode graph.CostMode) (*routing.RouteOutcome, error)
	Stats() StatsResponse
	EvacuationCenters() []LatLngJSON
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	finder  RouteFinder
	metrics *observability.Metrics
}

// NewHandlers creates handlers with the given route finder.
func NewHandlers(finder RouteFinder, metrics *observability.Metrics) *Handlers {
	return &Handlers{finder: finder, metrics: metrics}
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := validateCoord(req.Start); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "start")
		return
	}
	if err := validateCoord(req.End); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "end")
		return
	}
	mode, err := graph.ParseCostMode(req.CostFunction)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_cost_function", "cost_function")
		return
	}

	start := time.Now()
	out, err := h.finder.FindRoute(r.Context(),
		geo.LatLng{Lat: req.Start.Lat, Lng: req.Start.Lng},
		geo.LatLng{Lat: req.End.Lat, Lng: req.End.Lng},
		mode)
	h.observe(mode, start, err)
	if err != nil {
		writeRouteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, routeResponse(out))
}

// HandleEvacuationRoute handles POST /api/v1/nearest-safe-route.
func (h *Handlers) HandleEvacuationRoute(w http.ResponseWriter, r *http.Request) {
	var req EvacuationRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := validateCoord(req.Start); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "start")
		return
	}
	mode, err := graph.ParseCostMode(req.CostFunction)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_cost_function", "cost_function")
		return
	}

	start := time.Now()
	out, err := h.finder.FindEvacuationRoute(r.Context(),
		geo.LatLng{Lat: req.Start.Lat, Lng: req.Start.Lng}, mode)
	h.observe(mode, start, err)
	if err != nil {
		writeRouteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, routeResponse(out))
}

// HandleEvacuationCenters handles GET /api/v1/evacuation-centers.
func (h *Handlers) HandleEvacuationCenters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]LatLngJSON{
		"evacuation_centers": h.finder.EvacuationCenters(),
	})
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.finder.Stats())
}

func (h *Handlers) observe(mode graph.CostMode, start time.Time, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, routing.ErrUnreachable):
		outcome = "unreachable"
	case errors.Is(err, routing.ErrNoSuchNode), errors.Is(err, routing.ErrNoSafePoints):
		outcome = "bad_input"
	default:
		outcome = "error"
	}
	h.metrics.RouteRequests.WithLabelValues(string(mode), outcome).Inc()
	h.metrics.RouteDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
}

func decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return false
	}
	return true
}

func routeResponse(out *routing.RouteOutcome) RouteResponse {
	route := make([]LatLngJSON, len(out.Coordinates))
	for i, ll := range out.Coordinates {
		route[i] = LatLngJSON{Lat: ll.Lat, Lng: ll.Lng}
	}
	return RouteResponse{
		CostFunction:        string(out.Mode),
		Route:               route,
		SegmentIDs:          out.Path.SegmentIDs,
		TotalDistanceMeters: out.Path.TotalMeters,
		TotalWeight:         out.Path.TotalWeight,
		Safety: SafetyJSON{
			Mean:   out.Path.Safety.Mean,
			Min:    out.Path.Safety.Min,
			Max:    out.Path.Safety.Max,
			StdDev: out.Path.Safety.StdDev,
		},
		Directions: out.Steps,
		Summary:    out.Summary,
	}
}

func writeRouteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, routing.ErrNoSuchNode):
		writeError(w, http.StatusUnprocessableEntity, "point_unresolved", "")
	case errors.Is(err, routing.ErrNoSafePoints):
		writeError(w, http.StatusNotFound, "no_safe_points", "")
	case errors.Is(err, routing.ErrUnreachable):
		writeError(w, http.StatusNotFound, "no_route_found", "")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request_timeout", "")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func validateCoord(ll LatLngJSON) error {
	if math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) || math.IsInf(ll.Lat, 0) || math.IsInf(ll.Lng, 0) {
		return errors.New("coordinates must be finite numbers")
	}
	if ll.Lat < -90 || ll.Lat > 90 || ll.Lng < -180 || ll.Lng > 180 {
		return errors.New("coordinates out of range")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	writeJSON(w, status, ErrorResponse{Error: code, Field: field})
}
