package api

import (
	"github.com/sheltr/route-engine/pkg/directions"
)

// RouteRequest is the JSON body for POST /api/v1/route.
type RouteRequest struct {
	Start        LatLngJSON `json:"start"`
	End          LatLngJSON `json:"end"`
	CostFunction string     `json:"cost_function"` // distance|safety|combined|flood_risk, default combined
}

// EvacuationRequest is the JSON body for POST /api/v1/nearest-safe-route.
type EvacuationRequest struct {
	Start        LatLngJSON `json:"start"`
	CostFunction string     `json:"cost_function"`
}

// LatLngJSON represents a lat/lng pair in JSON.
type LatLngJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SafetyJSON summarizes the safety probabilities along a route.
type SafetyJSON struct {
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

// RouteResponse is the JSON response for a successful route query.
type RouteResponse struct {
	CostFunction        string             `json:"cost_function"`
	Route               []LatLngJSON       `json:"route"`
	SegmentIDs          []string           `json:"segment_ids"`
	TotalDistanceMeters float64            `json:"total_distance_meters"`
	TotalWeight         float64            `json:"total_weight"`
	Safety              SafetyJSON         `json:"safety"`
	Directions          []directions.Step  `json:"directions"`
	Summary             directions.Summary `json:"summary"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes        uint32 `json:"num_nodes"`
	NumEdges        uint32 `json:"num_edges"`
	NumComponents   uint32 `json:"num_components"`
	SegmentsSkipped int    `json:"segments_skipped"`
	SafePoints      int    `json:"safe_points"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
