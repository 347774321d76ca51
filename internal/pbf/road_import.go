package pbf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"

	"github.com/paulmach/osm"
	"github.com/qedus/osmpbf"
	"go.uber.org/zap"

	"github.com/natevvv/osm-traffic-routing/pkg/geometry"
	"github.com/natevvv/osm-traffic-routing/pkg/road"
)

var ErrNoRoads = errors.New("no roads found")

// Importer reads the drivable roads of an OSM extract
type Importer interface {
	Import(ctx context.Context) error
	Roads() []*road.Segment
}

// RoadImporter reads roads from an OSM PBF file in two passes:
// the first collects the highway ways, the second the coordinates of their nodes.
type RoadImporter struct {
	filename string
	roads    []*road.Segment
	nodes    map[int64]geometry.Point
	logger   *zap.Logger
}

func NewRoadImporter(filename string) *RoadImporter {
	return &RoadImporter{
		filename: filename,
		roads:    make([]*road.Segment, 0),
		nodes:    make(map[int64]geometry.Point),
		logger:   zap.NewNop(),
	}
}

func (ri *RoadImporter) SetLogger(logger *zap.Logger) {
	ri.logger = logger
}

func (ri *RoadImporter) Import(ctx context.Context) error {
	pending := make(map[*road.Segment][]int64)
	needed := make(map[int64]struct{})
	err := ri.decode(ctx, func(v interface{}) {
		way, ok := v.(*osmpbf.Way)
		if !ok {
			return
		}
		segment, ok := road.NewSegment(osm.WayID(way.ID), tagsFromMap(way.Tags))
		if !ok {
			return
		}
		for _, nodeID := range way.NodeIDs {
			needed[nodeID] = struct{}{}
		}
		pending[segment] = way.NodeIDs
		ri.roads = append(ri.roads, segment)
	})
	if err != nil {
		return err
	}
	ri.logger.Info("Collected ways", zap.String("file", ri.filename), zap.Int("roads", len(ri.roads)))

	err = ri.decode(ctx, func(v interface{}) {
		node, ok := v.(*osmpbf.Node)
		if !ok {
			return
		}
		if _, ok := needed[node.ID]; ok {
			ri.nodes[node.ID] = geometry.MakePoint(node.Lat, node.Lon)
		}
	})
	if err != nil {
		return err
	}

	ri.roads = resolve(ri.roads, func(segment *road.Segment) {
		for _, nodeID := range pending[segment] {
			if point, ok := ri.nodes[nodeID]; ok {
				segment.AddPoint(osm.NodeID(nodeID), point)
			}
		}
	})
	ri.logger.Info("Imported roads", zap.Int("roads", len(ri.roads)), zap.Int("nodes", len(ri.nodes)))
	if len(ri.roads) == 0 {
		return fmt.Errorf("%w in %v", ErrNoRoads, ri.filename)
	}
	return nil
}

// decode runs handle for every entity of the file
func (ri *RoadImporter) decode(ctx context.Context, handle func(v interface{})) error {
	file, err := os.Open(ri.filename)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := osmpbf.NewDecoder(file)
	decoder.SetBufferSize(osmpbf.MaxBlobSize)
	if err := decoder.Start(runtime.GOMAXPROCS(-1)); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, err := decoder.Decode()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return fmt.Errorf("decoding %v: %w", ri.filename, err)
		}
		handle(v)
	}
}

func (ri *RoadImporter) Roads() []*road.Segment {
	return ri.roads
}

// resolve fills the points of every segment and keeps the ones which form a line
func resolve(segments []*road.Segment, fill func(*road.Segment)) []*road.Segment {
	roads := segments[:0]
	for _, segment := range segments {
		fill(segment)
		segment.Normalize()
		if len(segment.Points) >= 2 {
			roads = append(roads, segment)
		}
	}
	return roads
}

func tagsFromMap(m map[string]string) osm.Tags {
	tags := make(osm.Tags, 0, len(m))
	for k, v := range m {
		tags = append(tags, osm.Tag{Key: k, Value: v})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Key < tags[j].Key })
	return tags
}
