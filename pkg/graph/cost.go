package graph

import "fmt"

// CostMode selects how edge weight trades distance against flood safety.
type CostMode string

const (
	// CostDistance weighs edges by geometric length only.
	CostDistance CostMode = "distance"
	// CostSafety weighs edges by predicted flood risk only.
	CostSafety CostMode = "safety"
	// CostCombined balances distance and risk on comparable scales.
	CostCombined CostMode = "combined"
	// CostFloodRisk lets risk dominate, with distance as a tiebreaker.
	CostFloodRisk CostMode = "flood_risk"
)

// DefaultSafety is the neutral probability assumed for segments without a
// safety prediction.
const DefaultSafety = 0.5

// ParseCostMode validates a cost mode string.
func ParseCostMode(s string) (CostMode, error) {
	switch CostMode(s) {
	case CostDistance, CostSafety, CostCombined, CostFloodRisk:
		return CostMode(s), nil
	case "":
		return CostCombined, nil
	default:
		return "", fmt.Errorf("unknown cost mode %q", s)
	}
}

// Weight derives the edge weight from distance in meters and a safety
// probability in [0, 1]. Every mode is non-decreasing in distance and
// non-increasing in safety, so a longer and riskier edge never costs less.
func (m CostMode) Weight(dist, safety float64) float64 {
	switch m {
	case CostSafety:
		return (1 - safety) * 1000
	case CostCombined:
		return dist + (1-safety)*1000
	case CostFloodRisk:
		return (1-safety)*10000 + dist*0.1
	default:
		return dist
	}
}
