// Package cost converts arcs into search costs.
package cost

import (
	"context"
	"math"

	geo "github.com/natevvv/osm-traffic-routing/pkg/geometry"
	"github.com/natevvv/osm-traffic-routing/pkg/graph"
	"github.com/natevvv/osm-traffic-routing/pkg/traffic"
)

const (
	DefaultSpeed   = traffic.DefaultSpeed // km/h
	HeuristicSpeed = 80.0                 // km/h
	MaxSpeed       = 130.0                // km/h, live speeds are capped here
)

// SpeedSource resolves the speed in km/h at a coordinate. It never fails.
type SpeedSource interface {
	SpeedAt(ctx context.Context, p geo.Point) float64
}

// TravelTime returns the seconds needed for length meters at speed km/h.
// Speeds <= 0 are replaced by DefaultSpeed.
func TravelTime(length, speed float64) float64 {
	if speed <= 0 {
		speed = DefaultSpeed
	}
	return length * 3600 / (speed * 1000)
}

type Option func(*Model)

func WithSpeedSource(speeds SpeedSource) Option {
	return func(m *Model) { m.speeds = speeds }
}

func WithDefaultSpeed(kmh float64) Option {
	return func(m *Model) {
		if kmh > 0 {
			m.defaultSpeed = kmh
		}
	}
}

// WithHeuristicSpeed sets the speed assumed for remaining distances.
// Lower bounds stay admissible only while no arc is traversed faster.
func WithHeuristicSpeed(kmh float64) Option {
	return func(m *Model) {
		if kmh > 0 {
			m.heuristicSpeed = kmh
		}
	}
}

// WithMaxSpeed caps the live speeds of the TRAFFIC mode. The cap also bounds the remaining
// travel time, so it must not be lower than any speed a route is costed with.
func WithMaxSpeed(kmh float64) Option {
	return func(m *Model) {
		if kmh > 0 {
			m.maxSpeed = kmh
		}
	}
}

// Model computes arc costs in one Mode. It holds no per-search state and is safe for concurrent use.
type Model struct {
	mode           Mode
	speeds         SpeedSource
	defaultSpeed   float64
	heuristicSpeed float64
	maxSpeed       float64
}

func NewModel(mode Mode, options ...Option) *Model {
	m := &Model{
		mode:           mode,
		defaultSpeed:   DefaultSpeed,
		heuristicSpeed: HeuristicSpeed,
		maxSpeed:       MaxSpeed,
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *Model) Mode() Mode {
	return m.mode
}

// HeuristicSpeed is the speed in km/h LowerBound assumes for the remaining distance
func (m *Model) HeuristicSpeed() float64 {
	if m.mode == TRAFFIC {
		return math.Max(m.heuristicSpeed, m.maxSpeed)
	}
	return m.heuristicSpeed
}

func (m *Model) MaxSpeed() float64 {
	return m.maxSpeed
}

// ArcCost returns the cost of traversing arc, which leads from the point from to the point to.
func (m *Model) ArcCost(ctx context.Context, from, to *geo.Point, arc graph.Arc) float64 {
	switch m.mode {
	case STATIC:
		if arc.HasTravelTime() {
			return arc.TravelTime
		}
		return TravelTime(arc.Length, m.defaultSpeed)
	case TRAFFIC:
		speed := m.defaultSpeed
		if m.speeds != nil {
			speed = m.speeds.SpeedAt(ctx, from.Midpoint(*to))
		}
		if speed <= 0 {
			speed = m.defaultSpeed
		}
		return TravelTime(arc.Length, math.Min(speed, m.maxSpeed))
	default:
		return arc.Length
	}
}

// LowerBound never exceeds the cost of any route from a to b,
// given arc lengths of at least the great-circle distance between their endpoints.
// In TRAFFIC mode no arc is costed faster than the max speed, which keeps the bound valid for any oracle.
func (m *Model) LowerBound(a, b *geo.Point) float64 {
	d := a.Haversine(b)
	if m.mode == DISTANCE {
		return d
	}
	return TravelTime(d, m.HeuristicSpeed())
}

// FastestSpeed returns the highest speed in km/h implied by the precomputed travel times of g, or 0.
func FastestSpeed(g graph.Graph) float64 {
	fastest := 0.0
	for i := 0; i < g.NodeCount(); i++ {
		for _, arc := range g.GetArcsFrom(i) {
			if !arc.HasTravelTime() {
				continue
			}
			if speed := arc.Length / arc.TravelTime * 3.6; speed > fastest {
				fastest = speed
			}
		}
	}
	return fastest
}
