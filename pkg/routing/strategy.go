package routing

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrUnknownStrategy = errors.New("unknown navigator")

// Strategy is one of the planners a Router can run
type Strategy byte

const (
	DIJKSTRA Strategy = iota
	ASTAR
	BIDIRECTIONAL
	RL
)

// Strategies in ranking order
func Strategies() []Strategy {
	return []Strategy{DIJKSTRA, ASTAR, BIDIRECTIONAL, RL}
}

func (s Strategy) String() string {
	switch s {
	case DIJKSTRA:
		return "dijkstra"
	case ASTAR:
		return "astar"
	case BIDIRECTIONAL:
		return "bidirectional"
	case RL:
		return "rl"
	}
	return fmt.Sprintf("Strategy(%d)", byte(s))
}

// Label is the human readable planner name used in rankings
func (s Strategy) Label() string {
	switch s {
	case DIJKSTRA:
		return "Dijkstra"
	case ASTAR:
		return "A*"
	case BIDIRECTIONAL:
		return "Bidirectional"
	case RL:
		return "RL"
	}
	return s.String()
}

func StrategyFromString(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dijkstra", "default":
		return DIJKSTRA, nil
	case "astar", "a*", "a-star":
		return ASTAR, nil
	case "bidirectional", "bidirectional-astar", "bidirectional-dijkstra":
		return BIDIRECTIONAL, nil
	case "rl", "q-learning", "reinforcement-learning":
		return RL, nil
	}
	return DIJKSTRA, fmt.Errorf("%w %q", ErrUnknownStrategy, s)
}

func (s *Strategy) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	strategy, err := StrategyFromString(name)
	if err != nil {
		return err
	}
	*s = strategy
	return nil
}

func (s Strategy) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}
