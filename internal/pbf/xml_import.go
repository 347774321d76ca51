package pbf

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmxml"
	"go.uber.org/zap"

	"github.com/natevvv/osm-traffic-routing/pkg/geometry"
	"github.com/natevvv/osm-traffic-routing/pkg/road"
)

// XmlRoadImporter reads roads from an OSM XML document.
// Ways carry their node references only, so all node coordinates are kept until the end.
type XmlRoadImporter struct {
	open   func() (io.ReadCloser, error)
	name   string
	roads  []*road.Segment
	logger *zap.Logger
}

func NewXmlRoadImporter(filename string) *XmlRoadImporter {
	return &XmlRoadImporter{
		open:   func() (io.ReadCloser, error) { return os.Open(filename) },
		name:   filename,
		logger: zap.NewNop(),
	}
}

// NewXmlRoadImporterFromReader reads the document from r, which is consumed by Import
func NewXmlRoadImporterFromReader(r io.Reader) *XmlRoadImporter {
	return &XmlRoadImporter{
		open:   func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
		name:   "reader",
		logger: zap.NewNop(),
	}
}

func (xi *XmlRoadImporter) SetLogger(logger *zap.Logger) {
	xi.logger = logger
}

func (xi *XmlRoadImporter) Import(ctx context.Context) error {
	reader, err := xi.open()
	if err != nil {
		return err
	}
	defer reader.Close()

	scanner := osmxml.New(ctx, reader)
	defer scanner.Close()

	nodes := make(map[osm.NodeID]geometry.Point)
	pending := make(map[*road.Segment][]osm.NodeID)
	segments := make([]*road.Segment, 0)
	for scanner.Scan() {
		switch object := scanner.Object().(type) {
		case *osm.Node:
			nodes[object.ID] = geometry.MakePoint(object.Lat, object.Lon)
		case *osm.Way:
			segment, ok := road.NewSegment(object.ID, object.Tags)
			if !ok {
				continue
			}
			pending[segment] = object.Nodes.NodeIDs()
			segments = append(segments, segment)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("decoding %v: %w", xi.name, err)
	}

	xi.roads = resolve(segments, func(segment *road.Segment) {
		for _, nodeID := range pending[segment] {
			if point, ok := nodes[nodeID]; ok {
				segment.AddPoint(nodeID, point)
			}
		}
	})
	xi.logger.Info("Imported roads", zap.String("source", xi.name), zap.Int("roads", len(xi.roads)), zap.Int("nodes", len(nodes)))
	if len(xi.roads) == 0 {
		return fmt.Errorf("%w in %v", ErrNoRoads, xi.name)
	}
	return nil
}

func (xi *XmlRoadImporter) Roads() []*road.Segment {
	return xi.roads
}
