package routing

import (
	"fmt"
	"sort"

	"github.com/natevvv/osm-traffic-routing/pkg/graph"
	"github.com/natevvv/osm-traffic-routing/pkg/graph/path"
)

const DefaultRankCount = 3

// Candidate is a path proposed by one planner
type Candidate struct {
	Label    string // e.g. "A*" or "RL - Rank 2"
	Strategy Strategy
	Path     []graph.NodeId
	Cost     float64
	Length   float64 // meters along the arcs the cost was computed on
	// labels of further planners which proposed the same path, only set when ranking distinct paths
	AlsoFoundBy []string
}

func rlLabel(rank int) string {
	return fmt.Sprintf("%v - Rank %v", RL.Label(), rank)
}

// Rank drops empty paths and returns the n cheapest candidates.
// Equal costs keep the given order. With distinct, a path proposed again is folded into its first occurrence.
func Rank(candidates []Candidate, n int, distinct bool) []Candidate {
	ranked := make([]Candidate, 0, len(candidates))
	positions := make(map[string]int)
	for _, c := range candidates {
		if len(c.Path) == 0 {
			continue
		}
		if distinct {
			key := path.PathKey(c.Path)
			if i, ok := positions[key]; ok {
				ranked[i].AlsoFoundBy = append(ranked[i].AlsoFoundBy, c.Label)
				continue
			}
			positions[key] = len(ranked)
		}
		ranked = append(ranked, c)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Cost < ranked[j].Cost
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
