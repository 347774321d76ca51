package path

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/natevvv/osm-traffic-routing/pkg/cost"
	"github.com/natevvv/osm-traffic-routing/pkg/graph"
)

var ErrInvalidOptions = errors.New("invalid q-learning options")

// RandomSource drives exploration and tie-breaking. *rand.Rand implements it.
type RandomSource interface {
	Float64() float64
	Intn(n int) int
}

type QLearningOptions struct {
	K        int     // number of distinct paths to return
	Episodes int     // number of simulated traversals
	Alpha    float64 // learning rate
	Gamma    float64 // discount factor
	Epsilon  float64 // exploration probability
	Workers  int     // goroutines sharing the Q-table
	Seed     int64   // seed of the per-worker random sources
}

func DefaultQLearningOptions() QLearningOptions {
	return QLearningOptions{K: 3, Episodes: 100, Alpha: 0.1, Gamma: 0.9, Epsilon: 0.2, Workers: 1, Seed: 1}
}

func (o QLearningOptions) Validate() error {
	switch {
	case o.K < 1:
		return fmt.Errorf("%w: k must be positive, got %v", ErrInvalidOptions, o.K)
	case o.Episodes < 0:
		return fmt.Errorf("%w: negative episode count %v", ErrInvalidOptions, o.Episodes)
	case o.Alpha <= 0 || o.Alpha > 1:
		return fmt.Errorf("%w: alpha %v not in (0, 1]", ErrInvalidOptions, o.Alpha)
	case o.Gamma < 0 || o.Gamma > 1:
		return fmt.Errorf("%w: gamma %v not in [0, 1]", ErrInvalidOptions, o.Gamma)
	case o.Epsilon < 0 || o.Epsilon > 1:
		return fmt.Errorf("%w: epsilon %v not in [0, 1]", ErrInvalidOptions, o.Epsilon)
	}
	return nil
}

// QLearning samples several distinct paths with episodic Q-learning.
// Every computation starts from an empty Q-table. Implements the Navigator Interface with its best path.
type QLearning struct {
	g       graph.Graph
	model   *cost.Model
	options QLearningOptions
	random  RandomSource
	logger  *zap.Logger
}

func NewQLearning(g graph.Graph, model *cost.Model, options QLearningOptions) *QLearning {
	if model == nil {
		model = cost.NewModel(cost.STATIC)
	}
	if options.Workers < 1 {
		options.Workers = 1
	}
	return &QLearning{g: g, model: model, options: options, logger: zap.NewNop()}
}

// SetRandomSource injects the random source. Episodes then run on a single goroutine.
// The source is consumed by the computations and must not be shared with concurrent ones.
func (q *QLearning) SetRandomSource(random RandomSource) {
	q.random = random
}

func (q *QLearning) SetLogger(logger *zap.Logger) {
	q.logger = logger
}

func (q *QLearning) Options() QLearningOptions { return q.options }

func (q *QLearning) Name() string { return "RL" }

// Get the used graph
func (q *QLearning) GetGraph() graph.Graph { return q.g }

// ComputeShortestPath returns the cheapest sampled path
func (q *QLearning) ComputeShortestPath(ctx context.Context, origin, destination graph.NodeId) (Result, error) {
	results, err := q.ComputeTopK(ctx, origin, destination)
	if err != nil {
		return Result{}, err
	}
	if len(results) == 0 {
		return noPath(SearchKPIs{}), nil
	}
	return results[0], nil
}

// ComputeTopK returns up to K distinct paths which reached the destination, cheapest first.
// No successful episode yields an empty list.
func (q *QLearning) ComputeTopK(ctx context.Context, origin, destination graph.NodeId) ([]Result, error) {
	if err := validateRequest(q.g, origin, destination); err != nil {
		return nil, err
	}
	if err := q.options.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, aborted(err)
	}

	q.logger.Debug("New sampling",
		zap.Int("origin", origin),
		zap.Int("destination", destination),
		zap.Int("episodes", q.options.Episodes),
		zap.Int("k", q.options.K))

	env := newEnvironment(q.g, q.model)
	table := NewQTable()
	episodes := make([]episode, q.options.Episodes)

	if q.random != nil || q.options.Workers == 1 {
		random := q.random
		if random == nil {
			random = rand.New(rand.NewSource(q.options.Seed))
		}
		for i := range episodes {
			e, err := q.runEpisode(ctx, env, table, random, origin, destination)
			if err != nil {
				return nil, err
			}
			episodes[i] = e
		}
	} else if err := q.runParallel(ctx, env, table, episodes, origin, destination); err != nil {
		return nil, err
	}

	results := rankEpisodes(episodes, q.options.K)
	q.logger.Debug("Finished sampling",
		zap.Int("origin", origin),
		zap.Int("destination", destination),
		zap.Int("distinctPaths", len(results)))
	return results, nil
}

// runParallel distributes the episodes round robin over the workers
func (q *QLearning) runParallel(ctx context.Context, env *environment, table *QTable, episodes []episode, origin, destination graph.NodeId) error {
	workers := q.options.Workers
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			random := rand.New(rand.NewSource(q.options.Seed + int64(w)))
			for i := w; i < len(episodes); i += workers {
				e, err := q.runEpisode(ctx, env, table, random, origin, destination)
				if err != nil {
					errs[w] = err
					return
				}
				episodes[i] = e
			}
		}(w)
	}
	wg.Wait()
	return errors.Join(errs...)
}

type episode struct {
	path    []graph.NodeId
	reward  float64
	reached bool
}

// runEpisode walks from origin until the destination, a dead end or an already visited node is reached,
// updating the Q-table after every step.
func (q *QLearning) runEpisode(ctx context.Context, env *environment, table *QTable, random RandomSource, origin, destination graph.NodeId) (episode, error) {
	current := origin
	path := []graph.NodeId{origin}
	visited := make(map[graph.NodeId]bool)
	total := 0.0

	for current != destination && !visited[current] {
		if err := ctx.Err(); err != nil {
			return episode{}, aborted(err)
		}
		visited[current] = true

		actions := env.actions(current)
		if len(actions) == 0 {
			// dead end
			break
		}

		next := q.chooseAction(table, random, current, actions)
		reward := -env.cost(ctx, current, next)
		total += reward
		path = append(path, next)

		future := 0.0
		if next != destination {
			future = table.Max(next, env.actions(next))
		}
		table.Update(current, next, reward, future, q.options.Alpha, q.options.Gamma)
		current = next
	}

	return episode{path: path, reward: total, reached: current == destination}, nil
}

// epsilon greedy, ties between the best actions are broken at random
func (q *QLearning) chooseAction(table *QTable, random RandomSource, state graph.NodeId, actions []graph.NodeId) graph.NodeId {
	if random.Float64() < q.options.Epsilon {
		return actions[random.Intn(len(actions))]
	}
	best := table.Best(state, actions)
	return best[random.Intn(len(best))]
}

// rankEpisodes keeps the successful episodes, best reward first, without repeated paths
func rankEpisodes(episodes []episode, k int) []Result {
	successful := make([]episode, 0, len(episodes))
	for _, e := range episodes {
		if e.reached {
			successful = append(successful, e)
		}
	}
	sort.SliceStable(successful, func(i, j int) bool {
		return successful[i].reward > successful[j].reward
	})

	results := make([]Result, 0, k)
	seen := make(map[string]bool)
	for _, e := range successful {
		if len(results) == k {
			break
		}
		key := PathKey(e.path)
		if seen[key] {
			continue
		}
		seen[key] = true
		results = append(results, Result{Path: e.path, Cost: -e.reward})
	}
	return results
}

// environment caches actions and move costs of one computation
type environment struct {
	g     graph.Graph
	model *cost.Model

	mu         sync.Mutex
	successors map[graph.NodeId][]graph.NodeId
	costs      map[[2]graph.NodeId]float64
}

func newEnvironment(g graph.Graph, model *cost.Model) *environment {
	return &environment{
		g:          g,
		model:      model,
		successors: make(map[graph.NodeId][]graph.NodeId),
		costs:      make(map[[2]graph.NodeId]float64),
	}
}

// actions are the distinct successors of a node
func (env *environment) actions(nodeId graph.NodeId) []graph.NodeId {
	env.mu.Lock()
	defer env.mu.Unlock()
	actions, ok := env.successors[nodeId]
	if !ok {
		actions = graph.Successors(env.g, nodeId)
		env.successors[nodeId] = actions
	}
	return actions
}

// cost of moving from u to v over the cheapest parallel arc
func (env *environment) cost(ctx context.Context, u, v graph.NodeId) float64 {
	key := [2]graph.NodeId{u, v}
	env.mu.Lock()
	c, ok := env.costs[key]
	env.mu.Unlock()
	if ok {
		return c
	}

	c = -1
	from, to := env.g.GetNode(u), env.g.GetNode(v)
	for _, arc := range env.g.GetArcsFrom(u) {
		if arc.To != v {
			continue
		}
		if arcCost := env.model.ArcCost(ctx, from, to, arc); c < 0 || arcCost < c {
			c = arcCost
		}
	}

	env.mu.Lock()
	env.costs[key] = c
	env.mu.Unlock()
	return c
}
