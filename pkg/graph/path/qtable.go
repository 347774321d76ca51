package path

import (
	"sync"

	"github.com/natevvv/osm-traffic-routing/pkg/graph"
)

type qKey struct {
	state, action graph.NodeId
}

// QTable maps (node, next node) to the learned value of that move.
// Unknown entries are 0. It is safe for concurrent use.
type QTable struct {
	mu     sync.Mutex
	values map[qKey]float64
}

func NewQTable() *QTable {
	return &QTable{values: make(map[qKey]float64)}
}

func (t *QTable) Get(state, action graph.NodeId) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.values[qKey{state, action}]
}

// Max is the highest value of the given actions in state, 0 without actions
func (t *QTable) Max(state graph.NodeId, actions []graph.NodeId) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.max(state, actions)
}

func (t *QTable) max(state graph.NodeId, actions []graph.NodeId) float64 {
	if len(actions) == 0 {
		return 0
	}
	best := t.values[qKey{state, actions[0]}]
	for _, a := range actions[1:] {
		if v := t.values[qKey{state, a}]; v > best {
			best = v
		}
	}
	return best
}

// Best returns all actions sharing the highest value, in the given order
func (t *QTable) Best(state graph.NodeId, actions []graph.NodeId) []graph.NodeId {
	t.mu.Lock()
	defer t.mu.Unlock()
	best := t.max(state, actions)
	result := make([]graph.NodeId, 0, 1)
	for _, a := range actions {
		if t.values[qKey{state, a}] == best {
			result = append(result, a)
		}
	}
	return result
}

// Update applies the temporal difference rule Q += alpha * (reward + gamma * future - Q)
func (t *QTable) Update(state, action graph.NodeId, reward, future, alpha, gamma float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := qKey{state, action}
	old := t.values[key]
	t.values[key] = old + alpha*(reward+gamma*future-old)
}

func (t *QTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.values)
}
