package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/natevvv/osm-traffic-routing/internal/logging"
	"github.com/natevvv/osm-traffic-routing/internal/pbf"
	"github.com/natevvv/osm-traffic-routing/pkg/graph"
	"github.com/natevvv/osm-traffic-routing/pkg/road"
)

func main() {
	roadFile := flag.String("roads", "", "build the graph from a merged road network (see cmd/merger)")
	pbfFile := flag.String("pbf", "", "build the graph from an OSM PBF extract")
	osmFile := flag.String("osm", "", "build the graph from an OSM XML extract")
	outputFile := flag.String("o", "road_graph.fmi", "output graph file")
	vehicle := flag.String("profile", "car", "speed profile (car, truck, bus, motorcycle, bicycle)")
	merge := flag.Bool("merge", true, "merge road segments of an extract before building")
	exportRoads := flag.String("export-roads", "", "also write the imported road network as json")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger := logging.Must(*logLevel, true)
	defer logger.Sync()

	profile, ok := road.ProfileFor(*vehicle)
	if !ok {
		logger.Fatal("Unknown speed profile", zap.String("profile", *vehicle))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	roads, err := loadRoads(ctx, logger, *roadFile, *pbfFile, *osmFile, *merge)
	if err != nil {
		logger.Fatal("Loading roads failed", zap.Error(err))
	}

	if *exportRoads != "" {
		if err := pbf.ExportRoadJson(roads, *exportRoads); err != nil {
			logger.Fatal("Exporting roads failed", zap.Error(err))
		}
	}

	createRoadGraph(logger, roads, profile, *outputFile)
}

func loadRoads(ctx context.Context, logger *zap.Logger, roadFile, pbfFile, osmFile string, merge bool) ([]*road.Segment, error) {
	start := time.Now()
	defer func() {
		fmt.Printf("[TIME] Load roads: %s\n", time.Since(start))
	}()

	var importer pbf.Importer
	switch {
	case roadFile != "":
		return pbf.ImportRoadJson(roadFile)
	case pbfFile != "":
		ri := pbf.NewRoadImporter(pbfFile)
		ri.SetLogger(logger)
		importer = ri
	case osmFile != "":
		xi := pbf.NewXmlRoadImporter(osmFile)
		xi.SetLogger(logger)
		importer = xi
	default:
		return nil, fmt.Errorf("one of -roads, -pbf or -osm is required")
	}

	if err := importer.Import(ctx); err != nil {
		return nil, err
	}
	if !merge {
		return importer.Roads(), nil
	}

	merger := road.NewMerger(importer.Roads())
	merger.Merge()
	fmt.Printf("Merges: %d, unmergable segments: %d\n", merger.MergeCount(), merger.UnmergableRoadCount())
	return merger.Roads(), nil
}

func createRoadGraph(logger *zap.Logger, roads []*road.Segment, profile road.Profile, outputFile string) {
	start := time.Now()
	builder := road.NewGraphBuilder(profile)
	builder.Add(roads...)
	g := builder.Graph()
	elapsed := time.Since(start)
	fmt.Printf("[TIME] Build graph: %s\n", elapsed)
	fmt.Printf("Road segments: %d (skipped %d)\n", len(roads), builder.Skipped())
	fmt.Printf("Nodes: %d\n", g.NodeCount())
	fmt.Printf("Arcs: %d\n", g.ArcCount())

	if err := graph.Validate(g); err != nil {
		logger.Fatal("Invalid graph", zap.Error(err))
	}

	start = time.Now()
	if err := graph.WriteFmi(g, outputFile); err != nil {
		logger.Fatal("Writing graph failed", zap.String("file", outputFile), zap.Error(err))
	}
	elapsed = time.Since(start)
	fmt.Printf("[TIME] Export graph: %s\n", elapsed)
	logger.Info("Graph written", zap.String("file", outputFile), zap.String("profile", profile.Vehicle))
}
