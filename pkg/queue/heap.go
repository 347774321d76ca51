package queue

import (
	"container/heap"
	"strings"
)

type MinHeap[T Priorizable] struct {
	Queue    PriorityQueue // hold the priority queue
	sequence uint64        // next insertion sequence number
}

func NewMinHeap[T Priorizable](items []T) *MinHeap[T] {
	h := &MinHeap[T]{}
	h.Queue = make(PriorityQueue, len(items))
	for i, item := range items {
		h.Queue[i] = item
		item.SetIndex(i)
		item.SetSequence(h.nextSequence())
	}
	heap.Init(&h.Queue)
	return h
}

func (h *MinHeap[T]) nextSequence() uint64 {
	s := h.sequence
	h.sequence++
	return s
}

func (h *MinHeap[T]) Len() int { return h.Queue.Len() }

// Push inserts the item behind all queued items of equal priority.
func (h *MinHeap[T]) Push(item T) {
	item.SetSequence(h.nextSequence())
	heap.Push(&h.Queue, item)
}

func (h *MinHeap[T]) Pop() T { return heap.Pop(&h.Queue).(T) }

// Update restores the heap order after the priority of a queued item changed.
// The item counts as rediscovered and moves behind items of equal priority.
func (h *MinHeap[T]) Update(item T) {
	item.SetSequence(h.nextSequence())
	heap.Fix(&h.Queue, item.Index())
}

func (h *MinHeap[T]) Peek() T { return h.Queue[0].(T) }
func (h *MinHeap[T]) PeekAt(index int) T {
	if index >= h.Len() {
		panic("index out of bounds")
	}
	return h.Queue[index].(T)
}
func (h *MinHeap[T]) Remove(index int) { heap.Remove(&h.Queue, index) }
func (h *MinHeap[T]) String() string {
	var sb strings.Builder
	for i := 0; i < h.Len(); i++ {
		item := h.PeekAt(i)
		sb.WriteString(item.String())
	}
	return sb.String()
}
