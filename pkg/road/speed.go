package road

import (
	"math"
	"strconv"
	"strings"
)

const mphToKmh = 1.609344

// ParseMaxSpeed interprets an OSM maxspeed value in km/h.
// Returns false for missing or unusable values like "signals".
func ParseMaxSpeed(maxspeed string) (int, bool) {
	maxspeed = strings.TrimSpace(strings.ToLower(maxspeed))
	switch {
	case maxspeed == "":
		return 0, false
	case maxspeed == "walk":
		return 10, true
	case maxspeed == "none":
		return 130, true
	case strings.HasSuffix(maxspeed, ":living_street"):
		return 10, true
	case strings.HasSuffix(maxspeed, ":urban"):
		return 50, true
	case strings.HasSuffix(maxspeed, ":rural"):
		return 100, true
	case strings.HasSuffix(maxspeed, ":motorway"):
		return 130, true
	}

	factor := 1.0
	if value, ok := strings.CutSuffix(maxspeed, "mph"); ok {
		maxspeed, factor = strings.TrimSpace(value), mphToKmh
	} else {
		maxspeed = strings.TrimSpace(strings.TrimSuffix(maxspeed, "km/h"))
	}
	// "50;30" lists several limits, the first one applies
	maxspeed, _, _ = strings.Cut(maxspeed, ";")
	speed, err := strconv.ParseFloat(maxspeed, 64)
	if err != nil || speed <= 0 {
		return 0, false
	}
	return int(math.Round(speed * factor)), true
}

// Profile holds the assumed speeds of a vehicle per road type
type Profile struct {
	Vehicle  string
	Speeds   map[RoadType]float64 // km/h
	Fallback float64              // km/h for road types without entry
	MaxSpeed float64              // km/h, upper limit of tagged speeds
}

var profiles = map[string]Profile{
	"car": {
		Vehicle:  "car",
		Speeds:   map[RoadType]float64{Motorway: 120, Trunk: 100, Primary: 80, Secondary: 60, Tertiary: 40, LivingStreet: 10},
		Fallback: 30,
		MaxSpeed: 130,
	},
	"truck": {
		Vehicle:  "truck",
		Speeds:   map[RoadType]float64{Motorway: 100, Trunk: 80, Primary: 60, LivingStreet: 10},
		Fallback: 40,
		MaxSpeed: 90,
	},
	"bus": {
		Vehicle:  "bus",
		Speeds:   map[RoadType]float64{Motorway: 100, Trunk: 80, LivingStreet: 10},
		Fallback: 50,
		MaxSpeed: 100,
	},
	"motorcycle": {
		Vehicle:  "motorcycle",
		Speeds:   map[RoadType]float64{Motorway: 100, LivingStreet: 10},
		Fallback: 60,
		MaxSpeed: 130,
	},
	"bicycle": {
		Vehicle:  "bicycle",
		Fallback: 25,
		MaxSpeed: 25,
	},
}

// ProfileFor returns the speed profile of the vehicle
func ProfileFor(vehicle string) (Profile, bool) {
	p, ok := profiles[strings.ToLower(vehicle)]
	return p, ok
}

func DefaultProfile() Profile {
	return profiles["car"]
}

// BaseSpeed is the speed on a road type without speed limit
func (p Profile) BaseSpeed(t RoadType) float64 {
	if speed, ok := p.Speeds[t]; ok {
		return speed
	}
	return p.Fallback
}

// Speed on the segment: the tagged limit if any, else the base speed of its type
func (p Profile) Speed(s *Segment) float64 {
	if s.MaxSpeed > 0 {
		return math.Min(float64(s.MaxSpeed), p.MaxSpeed)
	}
	return p.BaseSpeed(s.Type)
}
