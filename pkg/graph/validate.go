package graph

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrDanglingArc    = errors.New("arc endpoint not in graph")
	ErrNegativeLength = errors.New("arc length is negative or not finite")
)

// Validate checks that every arc of g connects existing nodes and has a usable length.
func Validate(g Graph) error {
	for i := 0; i < g.NodeCount(); i++ {
		for _, arc := range g.GetArcsFrom(i) {
			if !HasNode(g, arc.To) {
				return fmt.Errorf("%w: %d -> %d", ErrDanglingArc, i, arc.To)
			}
			if arc.Length < 0 || math.IsNaN(arc.Length) || math.IsInf(arc.Length, 0) {
				return fmt.Errorf("%w: %d -> %d (%v)", ErrNegativeLength, i, arc.To, arc.Length)
			}
		}
	}
	return nil
}
