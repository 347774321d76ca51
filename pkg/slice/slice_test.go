package slice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReverseInPlace(t *testing.T) {
	s := []int{1, 2, 3, 4}
	ReverseInPlace(s)
	assert.Equal(t, []int{4, 3, 2, 1}, s)

	odd := []string{"a", "b", "c"}
	ReverseInPlace(odd)
	assert.Equal(t, []string{"c", "b", "a"}, odd)

	var empty []int
	ReverseInPlace(empty)
	assert.Empty(t, empty)
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"dijkstra", "astar"}, "astar"))
	assert.False(t, Contains([]string{"dijkstra", "astar"}, "rl"))
	assert.False(t, Contains(nil, 3))
}

func TestDedup(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 1}, Dedup([]int{1, 1, 2, 3, 3, 3, 1}))
	assert.Equal(t, []int{5}, Dedup([]int{5}))
	assert.Empty(t, Dedup([]int{}))
}
