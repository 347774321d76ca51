package graph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	geo "github.com/natevvv/osm-traffic-routing/pkg/geometry"
)

var ErrMalformedFmi = errors.New("malformed fmi graph")

// fmi parse states
const (
	PARSE_NODE_COUNT = iota
	PARSE_EDGE_COUNT = iota
	PARSE_NODES      = iota
	PARSE_EDGES      = iota
)

func WriteFmi(g Graph, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.WriteString(g.AsString()); err != nil {
		return err
	}
	return writer.Flush()
}

// ReadFmi parses a graph in the fmi text format.
// Edge lines carry "from to length" and optionally a travel time in seconds and a road type.
func ReadFmi(r io.Reader) (*AdjacencyListGraph, error) {
	scanner := bufio.NewScanner(r)

	numNodes := 0
	numEdges := 0
	numParsedNodes := 0
	lineNumber := 0

	alg := NewAdjacencyListGraph()
	id2index := make(map[int]NodeId)

	malformed := func(format string, a ...any) error {
		return fmt.Errorf("%w: line %d: %s", ErrMalformedFmi, lineNumber, fmt.Sprintf(format, a...))
	}

	parseState := PARSE_NODE_COUNT
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if len(line) < 1 {
			// skip empty lines
			continue
		} else if line[0] == '#' {
			// skip comments
			continue
		}

		switch parseState {
		case PARSE_NODE_COUNT:
			val, err := strconv.Atoi(line)
			if err != nil || val < 0 {
				return nil, malformed("invalid node count %q", line)
			}
			numNodes = val
			parseState = PARSE_EDGE_COUNT
		case PARSE_EDGE_COUNT:
			val, err := strconv.Atoi(line)
			if err != nil || val < 0 {
				return nil, malformed("invalid edge count %q", line)
			}
			numEdges = val
			parseState = PARSE_NODES
			if numNodes == 0 {
				parseState = PARSE_EDGES
			}
		case PARSE_NODES:
			var id int
			var lat, lon float64
			if _, err := fmt.Sscanf(line, "%d %g %g", &id, &lat, &lon); err != nil {
				return nil, malformed("invalid node %q: %v", line, err)
			}
			if _, ok := id2index[id]; ok {
				return nil, malformed("duplicate node id %d", id)
			}
			id2index[id] = alg.AddNode(geo.MakePoint(lat, lon))
			numParsedNodes++
			if numParsedNodes == numNodes {
				parseState = PARSE_EDGES
			}
		case PARSE_EDGES:
			edge, err := parseFmiEdge(line, id2index)
			if err != nil {
				return nil, malformed("%v", err)
			}
			if !alg.AddEdge(edge) {
				return nil, malformed("invalid edge %q", line)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if alg.NodeCount() != numNodes {
		return nil, fmt.Errorf("%w: expected %d nodes, got %d", ErrMalformedFmi, numNodes, alg.NodeCount())
	}
	if alg.ArcCount() != numEdges {
		return nil, fmt.Errorf("%w: expected %d edges, got %d", ErrMalformedFmi, numEdges, alg.ArcCount())
	}

	return alg, nil
}

func parseFmiEdge(line string, id2index map[int]NodeId) (Edge, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 || len(fields) > 5 {
		return Edge{}, fmt.Errorf("invalid edge %q", line)
	}
	from, err := strconv.Atoi(fields[0])
	if err != nil {
		return Edge{}, fmt.Errorf("invalid source in %q", line)
	}
	to, err := strconv.Atoi(fields[1])
	if err != nil {
		return Edge{}, fmt.Errorf("invalid target in %q", line)
	}
	source, ok := id2index[from]
	if !ok {
		return Edge{}, fmt.Errorf("unknown source node %d", from)
	}
	target, ok := id2index[to]
	if !ok {
		return Edge{}, fmt.Errorf("unknown target node %d", to)
	}
	length, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return Edge{}, fmt.Errorf("invalid length in %q", line)
	}
	edge := MakeEdge(source, target, length)
	if len(fields) > 3 {
		if edge.TravelTime, err = strconv.ParseFloat(fields[3], 64); err != nil {
			return Edge{}, fmt.Errorf("invalid travel time in %q", line)
		}
	}
	if len(fields) > 4 {
		edge.RoadType = fields[4]
	}
	return edge, nil
}

func NewAdjacencyListFromFmiString(fmi string) (*AdjacencyListGraph, error) {
	return ReadFmi(strings.NewReader(fmi))
}

func NewAdjacencyListFromFmiFile(filename string) (*AdjacencyListGraph, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadFmi(file)
}

func NewAdjacencyArrayFromFmiString(fmi string) (*AdjacencyArrayGraph, error) {
	alg, err := NewAdjacencyListFromFmiString(fmi)
	if err != nil {
		return nil, err
	}
	return NewAdjacencyArrayFromGraph(alg), nil
}

func NewAdjacencyArrayFromFmiFile(filename string) (*AdjacencyArrayGraph, error) {
	alg, err := NewAdjacencyListFromFmiFile(filename)
	if err != nil {
		return nil, err
	}
	return NewAdjacencyArrayFromGraph(alg), nil
}
