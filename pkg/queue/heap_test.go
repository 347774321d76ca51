package queue

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	name     string
	priority float64
	index    int
	sequence uint64
}

func (t *testItem) Priority() float64    { return t.priority }
func (t *testItem) Index() int           { return t.index }
func (t *testItem) SetIndex(i int)       { t.index = i }
func (t *testItem) Sequence() uint64     { return t.sequence }
func (t *testItem) SetSequence(s uint64) { t.sequence = s }
func (t *testItem) String() string       { return fmt.Sprintf("%v:%v ", t.name, t.priority) }

func popAll(h *MinHeap[*testItem]) []string {
	names := make([]string, 0, h.Len())
	for h.Len() > 0 {
		names = append(names, h.Pop().name)
	}
	return names
}

func TestOrder(t *testing.T) {
	h := NewMinHeap[*testItem](nil)
	h.Push(&testItem{name: "c", priority: 3})
	h.Push(&testItem{name: "a", priority: 1})
	h.Push(&testItem{name: "b", priority: 2.5})
	assert.Equal(t, "a", h.Peek().name)
	assert.Equal(t, []string{"a", "b", "c"}, popAll(h))
}

func TestTieBreakByInsertion(t *testing.T) {
	h := NewMinHeap[*testItem](nil)
	for _, name := range []string{"x", "y", "z", "w"} {
		h.Push(&testItem{name: name, priority: 7})
	}
	h.Push(&testItem{name: "first", priority: 1})
	assert.Equal(t, []string{"first", "x", "y", "z", "w"}, popAll(h))
}

func TestUpdate(t *testing.T) {
	h := NewMinHeap[*testItem](nil)
	a := &testItem{name: "a", priority: 5}
	b := &testItem{name: "b", priority: 4}
	c := &testItem{name: "c", priority: 4}
	h.Push(a)
	h.Push(b)
	h.Push(c)

	// a becomes equal to b and c, but was rediscovered last
	a.priority = 4
	h.Update(a)
	assert.Equal(t, []string{"b", "c", "a"}, popAll(h))
}

func TestInitAndRemove(t *testing.T) {
	items := []*testItem{{name: "a", priority: 2}, {name: "b", priority: 1}, {name: "c", priority: 2}}
	h := NewMinHeap(items)
	require.Equal(t, 3, h.Len())
	assert.Equal(t, "b", h.Peek().name)

	h.Remove(items[2].Index())
	assert.Equal(t, -1, items[2].Index())
	assert.Equal(t, []string{"b", "a"}, popAll(h))
	assert.Panics(t, func() { h.PeekAt(0) })
}
