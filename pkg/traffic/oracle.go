// Package traffic looks up road speeds from live traffic services.
package traffic

import (
	"context"
	"errors"
)

// DefaultSpeed in km/h is used whenever no usable speed is known.
const DefaultSpeed = 50.0

var (
	ErrUnavailable       = errors.New("traffic oracle unavailable")
	ErrMalformedResponse = errors.New("malformed traffic oracle response")
)

// Reading holds the speeds reported for a location in km/h.
// A value <= 0 means the oracle did not report it.
type Reading struct {
	CurrentSpeed  float64
	FreeFlowSpeed float64
}

func (r Reading) HasCurrent() bool  { return r.CurrentSpeed > 0 }
func (r Reading) HasFreeFlow() bool { return r.FreeFlowSpeed > 0 }
func (r Reading) Known() bool       { return r.HasCurrent() || r.HasFreeFlow() }

// Speed returns the best reported speed, preferring the current one, or 0.
func (r Reading) Speed() float64 {
	if r.HasCurrent() {
		return r.CurrentSpeed
	}
	if r.HasFreeFlow() {
		return r.FreeFlowSpeed
	}
	return 0
}

// Oracle reports the traffic speed at a coordinate.
// Implementations must be safe for concurrent use.
type Oracle interface {
	Speed(ctx context.Context, lat, lon float64) (Reading, error)
}

// The OracleFunc type is an adapter to allow the use of ordinary functions as oracles.
type OracleFunc func(ctx context.Context, lat, lon float64) (Reading, error)

func (f OracleFunc) Speed(ctx context.Context, lat, lon float64) (Reading, error) {
	return f(ctx, lat, lon)
}

// Unknown never knows a speed.
var Unknown Oracle = OracleFunc(func(ctx context.Context, lat, lon float64) (Reading, error) {
	return Reading{}, nil
})

// Constant reports the same current speed everywhere.
func Constant(kmh float64) Oracle {
	return OracleFunc(func(ctx context.Context, lat, lon float64) (Reading, error) {
		return Reading{CurrentSpeed: kmh, FreeFlowSpeed: kmh}, nil
	})
}
