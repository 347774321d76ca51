package road

import (
	"github.com/natevvv/osm-traffic-routing/pkg/geometry"
)

// Merger joins segments where one ends at the start of another with the same attributes
type Merger struct {
	roads           []*Segment
	mergeCount      int
	unmergableCount int
}

func NewMerger(roads []*Segment) *Merger {
	return &Merger{
		roads: roads,
	}
}

func (m *Merger) Merge() {
	// segments by their first point
	startsAt := make(map[geometry.Point][]*Segment)
	for _, seg := range m.roads {
		if len(seg.Points) < 2 {
			continue
		}
		startsAt[seg.Start()] = append(startsAt[seg.Start()], seg)
	}
	// the number of segments meeting at a point, a junction must stay a segment boundary
	degree := make(map[geometry.Point]int)
	for _, seg := range m.roads {
		if len(seg.Points) < 2 {
			continue
		}
		degree[seg.Start()]++
		degree[seg.End()]++
	}

	used := make(map[*Segment]bool)
	newRoads := make([]*Segment, 0, len(m.roads))

	for _, seg := range m.roads {
		if len(seg.Points) < 2 {
			m.unmergableCount++
			continue
		}
		if used[seg] {
			continue
		}
		used[seg] = true

		current := seg
		for degree[current.End()] == 2 {
			var next *Segment
			for _, candidate := range startsAt[current.End()] {
				if !used[candidate] && canMerge(current, candidate) {
					next = candidate
					break
				}
			}
			if next == nil {
				break
			}
			current = mergeTwoSegments(current, next)
			used[next] = true
			m.mergeCount++
		}
		newRoads = append(newRoads, current)
	}

	m.roads = newRoads
}

func canMerge(s1, s2 *Segment) bool {
	return s1.Type == s2.Type &&
		s1.OneWay == s2.OneWay &&
		s1.MaxSpeed == s2.MaxSpeed
}

func mergeTwoSegments(s1, s2 *Segment) *Segment {
	merged := &Segment{
		ID:       s1.ID,
		Type:     s1.Type,
		OneWay:   s1.OneWay,
		MaxSpeed: s1.MaxSpeed,
		Tags:     s1.Tags,
	}

	// the first point of s2 is the last one of s1
	merged.Points = append(merged.Points, s1.Points...)
	merged.Points = append(merged.Points, s2.Points[1:]...)
	if len(s1.Nodes) == len(s1.Points) && len(s2.Nodes) == len(s2.Points) {
		merged.Nodes = append(merged.Nodes, s1.Nodes...)
		merged.Nodes = append(merged.Nodes, s2.Nodes[1:]...)
	}

	return merged
}

func (m *Merger) Roads() []*Segment {
	return m.roads
}

func (m *Merger) MergeCount() int {
	return m.mergeCount
}

func (m *Merger) UnmergableRoadCount() int {
	return m.unmergableCount
}
