package cost

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrUnknownMode = errors.New("unknown cost mode")

// Mode selects what an arc costs.
type Mode byte

const (
	DISTANCE Mode = iota // meters
	STATIC               // seconds from precomputed travel times or the default speed
	TRAFFIC              // seconds from live traffic speeds
)

func (m Mode) String() string {
	switch m {
	case DISTANCE:
		return "distance"
	case STATIC:
		return "static"
	case TRAFFIC:
		return "traffic"
	}
	return fmt.Sprintf("Mode(%d)", byte(m))
}

// Unit of the costs produced in this mode.
func (m Mode) Unit() string {
	if m == DISTANCE {
		return "m"
	}
	return "s"
}

func ModeFromString(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "distance", "length", "shortest":
		return DISTANCE, nil
	case "static", "time", "fastest":
		return STATIC, nil
	case "traffic":
		return TRAFFIC, nil
	}
	return DISTANCE, fmt.Errorf("%w %q", ErrUnknownMode, s)
}

func (m *Mode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	mode, err := ModeFromString(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

func (m Mode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}
