package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheltr/route-engine/pkg/directions"
	"github.com/sheltr/route-engine/pkg/geo"
	"github.com/sheltr/route-engine/pkg/graph"
	"github.com/sheltr/route-engine/pkg/observability"
	"github.com/sheltr/route-engine/pkg/routing"
)

// mockFinder implements RouteFinder for testing.
type mockFinder struct {
	outcome *routing.RouteOutcome
	err     error
	mode    graph.CostMode // records the mode of the last call
}

func (m *mockFinder) FindRoute(_ context.Context, _, _ geo.LatLng, mode graph.CostMode) (*routing.RouteOutcome, error) {
	m.mode = mode
	return m.outcome, m.err
}

func (m *mockFinder) FindEvacuationRoute(_ context.Context, _ geo.LatLng, mode graph.CostMode) (*routing.RouteOutcome, error) {
	m.mode = mode
	return m.outcome, m.err
}

func (m *mockFinder) Stats() StatsResponse {
	return StatsResponse{NumNodes: 100, NumEdges: 240, NumComponents: 2, SafePoints: 3}
}

func (m *mockFinder) EvacuationCenters() []LatLngJSON {
	return []LatLngJSON{{Lat: 14.6, Lng: 121.0}}
}

func testOutcome() *routing.RouteOutcome {
	return &routing.RouteOutcome{
		Mode: graph.CostCombined,
		Path: &routing.PathResult{
			SegmentIDs:  []string{"17", "23"},
			TotalWeight: 400,
			TotalMeters: 200,
			Safety:      routing.SafetyStats{Mean: 0.9, Min: 0.9, Max: 0.9},
		},
		Coordinates: []geo.LatLng{{Lat: 14.61, Lng: 121.01}, {Lat: 14.62, Lng: 121.02}},
		Steps: []directions.Step{
			{Number: 1, Instruction: "Head northeast", Type: directions.StepStart},
			{Number: 2, Instruction: "You have arrived at your destination", Type: directions.StepDestination},
		},
		Summary: directions.Summary{TotalSteps: 2, TotalMeters: 200},
	}
}

func newHandlers(mock *mockFinder) *Handlers {
	return NewHandlers(mock, observability.NewMetricsForTesting())
}

func postJSON(h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestHandleRoute_Success(t *testing.T) {
	mock := &mockFinder{outcome: testOutcome()}
	h := newHandlers(mock)

	body := `{"start":{"lat":14.61,"lng":121.01},"end":{"lat":14.62,"lng":121.02},"cost_function":"flood_risk"}`
	w := postJSON(h.HandleRoute, "/api/v1/route", body)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, graph.CostFloodRisk, mock.mode)

	var resp RouteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"17", "23"}, resp.SegmentIDs)
	assert.Equal(t, 200.0, resp.TotalDistanceMeters)
	assert.Equal(t, 400.0, resp.TotalWeight)
	assert.Len(t, resp.Route, 2)
	assert.Len(t, resp.Directions, 2)
	assert.InDelta(t, 0.9, resp.Safety.Mean, 1e-9)
}

func TestHandleRoute_DefaultCostFunction(t *testing.T) {
	mock := &mockFinder{outcome: testOutcome()}
	h := newHandlers(mock)

	body := `{"start":{"lat":14.61,"lng":121.01},"end":{"lat":14.62,"lng":121.02}}`
	w := postJSON(h.HandleRoute, "/api/v1/route", body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, graph.CostCombined, mock.mode)
}

func TestHandleRoute_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `not json`},
		{"bad cost function", `{"start":{"lat":1,"lng":1},"end":{"lat":2,"lng":2},"cost_function":"teleport"}`},
		{"lat out of range", `{"start":{"lat":91,"lng":1},"end":{"lat":2,"lng":2}}`},
		{"lng out of range", `{"start":{"lat":1,"lng":181},"end":{"lat":2,"lng":2}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandlers(&mockFinder{outcome: testOutcome()})
			w := postJSON(h.HandleRoute, "/api/v1/route", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandleRoute_MissingContentType(t *testing.T) {
	h := newHandlers(&mockFinder{outcome: testOutcome()})

	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	h.HandleRoute(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleRoute_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unresolved point", routing.ErrNoSuchNode, http.StatusUnprocessableEntity, "point_unresolved"},
		{"unreachable", routing.ErrUnreachable, http.StatusNotFound, "no_route_found"},
		{"timeout", context.DeadlineExceeded, http.StatusServiceUnavailable, "request_timeout"},
		{"internal", assert.AnError, http.StatusInternalServerError, "internal_error"},
	}
	body := `{"start":{"lat":14.61,"lng":121.01},"end":{"lat":14.62,"lng":121.02}}`
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHandlers(&mockFinder{err: tt.err})
			w := postJSON(h.HandleRoute, "/api/v1/route", body)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error)
		})
	}
}

func TestHandleEvacuationRoute(t *testing.T) {
	mock := &mockFinder{outcome: testOutcome()}
	h := newHandlers(mock)

	body := `{"start":{"lat":14.61,"lng":121.01}}`
	w := postJSON(h.HandleEvacuationRoute, "/api/v1/nearest-safe-route", body)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, graph.CostCombined, mock.mode)
}

func TestHandleEvacuationRoute_NoSafePoints(t *testing.T) {
	h := newHandlers(&mockFinder{err: routing.ErrNoSafePoints})

	body := `{"start":{"lat":14.61,"lng":121.01}}`
	w := postJSON(h.HandleEvacuationRoute, "/api/v1/nearest-safe-route", body)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "no_safe_points", resp.Error)
}

func TestHandleEvacuationCenters(t *testing.T) {
	h := newHandlers(&mockFinder{})

	req := httptest.NewRequest("GET", "/api/v1/evacuation-centers", nil)
	w := httptest.NewRecorder()
	h.HandleEvacuationCenters(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string][]LatLngJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp["evacuation_centers"], 1)
}

func TestHandleHealthAndStats(t *testing.T) {
	h := newHandlers(&mockFinder{})

	w := httptest.NewRecorder()
	h.HandleHealth(w, httptest.NewRequest("GET", "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.HandleStats(w, httptest.NewRequest("GET", "/api/v1/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var stats StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, uint32(100), stats.NumNodes)
	assert.Equal(t, 3, stats.SafePoints)
}
