package queue

// Priorizable items can be stored in a MinHeap.
// The heap maintains Index and Sequence, the owner only reads them.
type Priorizable interface {
	Priority() float64
	Index() int
	SetIndex(index int)
	Sequence() uint64
	SetSequence(sequence uint64)
	String() string
}

// Implements heap.Interface.
// Equal priorities are ordered by sequence, the order in which the items entered the queue.
type PriorityQueue []Priorizable

func (q PriorityQueue) Len() int { return len(q) }
func (q PriorityQueue) Less(i, j int) bool {
	if q[i].Priority() == q[j].Priority() {
		return q[i].Sequence() < q[j].Sequence()
	}
	return q[i].Priority() < q[j].Priority()
}
func (q PriorityQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].SetIndex(i)
	q[j].SetIndex(j)
}
func (q *PriorityQueue) Push(item any) {
	n := len(*q)
	pqItem := item.(Priorizable)
	pqItem.SetIndex(n)
	*q = append(*q, pqItem)
}
func (q *PriorityQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.SetIndex(-1) // for safety
	*q = old[:n-1]
	return item
}
