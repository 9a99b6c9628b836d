package directions

import (
	"fmt"
	"math"

	"github.com/sheltr/route-engine/pkg/geo"
)

// StepType tags each step's role in the route.
type StepType string

const (
	StepStart       StepType = "start"
	StepTurn        StepType = "turn"
	StepDestination StepType = "destination"
)

// Step is one discrete navigation instruction.
type Step struct {
	Number         int        `json:"step"`
	Instruction    string     `json:"instruction"`
	DistanceMeters float64    `json:"distance"`
	TotalMeters    float64    `json:"total_distance"`
	Coordinate     [2]float64 `json:"coordinates"` // [lat, lng]
	Bearing        float64    `json:"bearing"`
	TurnAngle      float64    `json:"turn_angle,omitempty"`
	Type           StepType   `json:"type"`
}

// Summary aggregates a route's direction steps.
type Summary struct {
	TotalSteps       int     `json:"total_steps"`
	TotalMeters      float64 `json:"total_distance"`
	TotalFormatted   string  `json:"total_distance_formatted"`
	NumTurns         int     `json:"num_turns"`
	EstimatedMinutes int     `json:"estimated_time_minutes"`
}

// Defaults for the synthesis parameters. The turn threshold is an
// empirically chosen constant, kept configurable rather than hard-coded.
const (
	DefaultTurnThresholdDeg = 20.0
	DefaultWalkingSpeedKmh  = 5.0
)

// Options configures direction synthesis.
type Options struct {
	TurnThresholdDeg float64 // minimum bearing change to count as a turn
	WalkingSpeedKmh  float64 // for the estimated-time summary
}

func (o Options) withDefaults() Options {
	if o.TurnThresholdDeg <= 0 {
		o.TurnThresholdDeg = DefaultTurnThresholdDeg
	}
	if o.WalkingSpeedKmh <= 0 {
		o.WalkingSpeedKmh = DefaultWalkingSpeedKmh
	}
	return o
}

// Generate converts a continuous route polyline into discrete turn-by-turn
// steps. Only turning points survive: a point is retained when the bearing
// to the next point differs from the last retained bearing by more than the
// threshold. The first and last points are always retained.
//
// Fewer than two distinct input points yields a single arrival step.
func Generate(coords []geo.LatLng, opts Options) []Step {
	opts = opts.withDefaults()

	pts := dropZeroLength(coords)
	if len(pts) < 2 {
		step := Step{
			Number:      1,
			Instruction: "You are already at your destination",
			Type:        StepDestination,
		}
		if len(pts) == 1 {
			step.Coordinate = [2]float64{pts[0].Lat, pts[0].Lng}
		}
		return []Step{step}
	}

	retained := simplify(pts, opts.TurnThresholdDeg)

	initialBearing := geo.Bearing(retained[0], retained[1])
	steps := []Step{{
		Number:      1,
		Instruction: "Head " + geo.CompassDirection(initialBearing),
		Coordinate:  [2]float64{retained[0].Lat, retained[0].Lng},
		Bearing:     initialBearing,
		Type:        StepStart,
	}}

	total := 0.0
	prevBearing := initialBearing
	for i := 1; i < len(retained)-1; i++ {
		legDist := geo.HaversineLatLng(retained[i-1], retained[i])
		total += legDist

		bearing := geo.Bearing(retained[i], retained[i+1])
		turn := geo.TurnAngle(prevBearing, bearing)

		steps = append(steps, Step{
			Number:         len(steps) + 1,
			Instruction:    turnInstruction(turn, opts.TurnThresholdDeg),
			DistanceMeters: round1(legDist),
			TotalMeters:    round1(total),
			Coordinate:     [2]float64{retained[i].Lat, retained[i].Lng},
			Bearing:        bearing,
			TurnAngle:      round1(turn),
			Type:           StepTurn,
		})
		prevBearing = bearing
	}

	// Arrival step, regardless of the final turn angle.
	last := len(retained) - 1
	finalDist := geo.HaversineLatLng(retained[last-1], retained[last])
	total += finalDist
	steps = append(steps, Step{
		Number:         len(steps) + 1,
		Instruction:    "You have arrived at your destination",
		DistanceMeters: round1(finalDist),
		TotalMeters:    round1(total),
		Coordinate:     [2]float64{retained[last].Lat, retained[last].Lng},
		Bearing:        prevBearing,
		Type:           StepDestination,
	})

	return steps
}

// Summarize aggregates steps into route totals.
func Summarize(steps []Step, opts Options) Summary {
	opts = opts.withDefaults()
	if len(steps) == 0 {
		return Summary{}
	}

	total := steps[len(steps)-1].TotalMeters
	turns := 0
	for _, s := range steps {
		if s.Type == StepTurn {
			turns++
		}
	}

	return Summary{
		TotalSteps:       len(steps),
		TotalMeters:      total,
		TotalFormatted:   FormatDistance(total),
		NumTurns:         turns,
		EstimatedMinutes: int(math.Round(total / 1000 / opts.WalkingSpeedKmh * 60)),
	}
}

// FormatDistance renders meters below 1000, kilometers with one decimal above.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%dm", int(meters))
	}
	return fmt.Sprintf("%.1fkm", meters/1000)
}

// simplify retains only the first point, turning points, and the last point.
func simplify(pts []geo.LatLng, thresholdDeg float64) []geo.LatLng {
	if len(pts) <= 2 {
		return pts
	}

	retained := []geo.LatLng{pts[0]}
	curBearing := geo.Bearing(pts[0], pts[1])

	for i := 1; i < len(pts)-1; i++ {
		bearing := geo.Bearing(pts[i], pts[i+1])
		if math.Abs(geo.TurnAngle(curBearing, bearing)) > thresholdDeg {
			retained = append(retained, pts[i])
			curBearing = bearing
		}
	}

	return append(retained, pts[len(pts)-1])
}

// dropZeroLength removes consecutive duplicate coordinates. Shared endpoints
// between adjacent segments produce zero-length legs that would otherwise
// corrupt bearing calculations.
func dropZeroLength(pts []geo.LatLng) []geo.LatLng {
	const eps = 1e-9
	out := make([]geo.LatLng, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 {
			prev := out[len(out)-1]
			if math.Abs(p.Lat-prev.Lat) < eps && math.Abs(p.Lng-prev.Lng) < eps {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// turnInstruction maps a signed turn angle to its instruction text. The
// straight band matches the simplification threshold, so a point retained
// as a turn is never narrated as going straight.
func turnInstruction(turn, thresholdDeg float64) string {
	abs := math.Abs(turn)
	right := turn > 0

	switch {
	case abs < thresholdDeg:
		return "Continue straight"
	case abs < 45:
		if right {
			return "Bear slight right"
		}
		return "Bear slight left"
	case abs <= 135:
		if right {
			return "Turn right"
		}
		return "Turn left"
	default:
		if right {
			return "Make a sharp right turn"
		}
		return "Make a sharp left turn"
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
