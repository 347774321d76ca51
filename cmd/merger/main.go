package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/natevvv/osm-traffic-routing/internal/logging"
	"github.com/natevvv/osm-traffic-routing/internal/pbf"
	"github.com/natevvv/osm-traffic-routing/pkg/road"
)

var flagInputFile = flag.String("f", "berlin.osm.pbf", "OSM extract (.osm.pbf or .osm)")
var flagOutputFile = flag.String("o", "berlin.road.json", "file of the merged road network")
var flagLogLevel = flag.String("log-level", "info", "log level")

// newImporter chooses the importer by file extension
func newImporter(filename string) pbf.Importer {
	if strings.HasSuffix(filename, ".osm") || strings.HasSuffix(filename, ".xml") {
		return pbf.NewXmlRoadImporter(filename)
	}
	return pbf.NewRoadImporter(filename)
}

func main() {
	flag.Parse()

	logger := logging.Must(*flagLogLevel, true)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()

	roadImporter := newImporter(*flagInputFile)
	if err := roadImporter.Import(ctx); err != nil {
		logger.Fatal("Import failed", zap.String("file", *flagInputFile), zap.Error(err))
	}

	elapsed := time.Since(start)
	fmt.Printf("[TIME] Import: %s\n", elapsed)

	start = time.Now()

	merger := road.NewMerger(roadImporter.Roads())
	merger.Merge()

	elapsed = time.Since(start)
	fmt.Printf("[TIME] Merge: %s\n", elapsed)
	fmt.Printf("Road segments: %d\n", len(merger.Roads()))
	fmt.Printf("Merges: %d\n", merger.MergeCount())
	fmt.Printf("Unmergable segments: %d\n", merger.UnmergableRoadCount())

	start = time.Now()

	if err := pbf.ExportRoadJson(merger.Roads(), *flagOutputFile); err != nil {
		logger.Fatal("Export failed", zap.String("file", *flagOutputFile), zap.Error(err))
	}

	elapsed = time.Since(start)
	fmt.Printf("[TIME] Export: %s\n", elapsed)
	fmt.Printf("Exported road network to %s\n", *flagOutputFile)
}
