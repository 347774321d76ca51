package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/natevvv/osm-traffic-routing/internal/config"
	"github.com/natevvv/osm-traffic-routing/internal/logging"
	"github.com/natevvv/osm-traffic-routing/pkg/cost"
	"github.com/natevvv/osm-traffic-routing/pkg/geometry"
	"github.com/natevvv/osm-traffic-routing/pkg/graph"
	"github.com/natevvv/osm-traffic-routing/pkg/routing"
	"github.com/natevvv/osm-traffic-routing/pkg/traffic"
)

type options struct {
	configFile string
	graphFile  string
	from, to   string
	mode       string
	count      int
	distinct   bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configFile, "config", config.DefaultFile, "configuration file")
	flag.StringVar(&opts.graphFile, "graph", "", "graph file, overrides the configuration")
	flag.StringVar(&opts.from, "from", "", "origin as node id or \"lat,lon\"")
	flag.StringVar(&opts.to, "to", "", "destination as node id or \"lat,lon\"")
	flag.StringVar(&opts.mode, "mode", "", "cost mode (distance, static, traffic)")
	flag.IntVar(&opts.count, "n", 0, "number of ranked routes")
	flag.BoolVar(&opts.distinct, "distinct", false, "fold identical routes of different navigators")
	verbose := flag.Bool("v", false, "log planner runs")
	flag.Parse()

	if opts.from == "" || opts.to == "" {
		flag.Usage()
		os.Exit(2)
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger := logging.Must(level, true)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, logger, opts, os.Stdout); err != nil {
		logger.Fatal("Ranking routes failed", zap.Error(err))
	}
}

func run(ctx context.Context, logger *zap.Logger, opts options, out io.Writer) error {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	if opts.graphFile != "" {
		cfg.Graph = opts.graphFile
	}
	if opts.count <= 0 {
		opts.count = cfg.Routing.RankCount
	}

	g, err := graph.NewAdjacencyArrayFromFmiFile(cfg.Graph)
	if err != nil {
		return fmt.Errorf("load graph %v: %w", cfg.Graph, err)
	}

	oracle, err := cfg.Oracle()
	if err != nil {
		logger.Warn("No traffic oracle, using the default speed", zap.Float64("speed", cfg.Routing.DefaultSpeed), zap.Error(err))
	}
	var speeds cost.SpeedSource
	if oracle != nil {
		speeds = traffic.NewAdapter(oracle,
			traffic.WithDefaultSpeed(cfg.Routing.DefaultSpeed),
			traffic.WithCache(cfg.Traffic.CacheSize, cfg.Traffic.CacheTTL),
			traffic.WithLogger(logger))
	}
	router := routing.NewRouter(g, speeds,
		routing.WithMode(cfg.Routing.Mode),
		routing.WithHeuristicSpeed(cfg.Routing.HeuristicSpeed),
		routing.WithDefaultSpeed(cfg.Routing.DefaultSpeed),
		routing.WithMaxSpeed(cfg.Routing.MaxSpeed),
		routing.WithMeetingRule(cfg.MeetingRule()),
		routing.WithQLearningOptions(cfg.QLearningOptions()),
		routing.WithTimeout(cfg.Routing.Timeout),
		routing.WithLogger(logger))

	origin, err := resolveNode(router, opts.from)
	if err != nil {
		return fmt.Errorf("origin: %w", err)
	}
	destination, err := resolveNode(router, opts.to)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}

	costMode := router.Mode()
	if opts.mode != "" {
		if costMode, err = cost.ModeFromString(opts.mode); err != nil {
			return err
		}
	}
	ranked, err := router.RankRoutes(ctx, origin, destination, routing.RankConfig{Mode: costMode.String(), Count: opts.count, Distinct: opts.distinct})
	if err != nil {
		return err
	}
	printRanking(out, router, origin, destination, costMode, ranked)
	return nil
}

// resolveNode parses a node id or snaps a "lat,lon" coordinate to the nearest node
func resolveNode(router *routing.Router, s string) (graph.NodeId, error) {
	lat, lon, isCoordinate := strings.Cut(s, ",")
	if !isCoordinate {
		id, err := strconv.Atoi(s)
		if err != nil {
			return -1, fmt.Errorf("invalid node %q: %w", s, err)
		}
		return id, nil
	}
	latitude, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return -1, fmt.Errorf("invalid latitude %q: %w", lat, err)
	}
	longitude, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return -1, fmt.Errorf("invalid longitude %q: %w", lon, err)
	}
	return router.NearestNode(geometry.MakePoint(latitude, longitude))
}

func printRanking(out io.Writer, router *routing.Router, origin, destination graph.NodeId, mode cost.Mode, ranked []routing.Candidate) {
	fmt.Fprintf(out, "Routes from %v to %v (%v)\n", origin, destination, mode)
	if len(ranked) == 0 {
		fmt.Fprintln(out, "No route found")
		return
	}

	fmt.Fprintf(out, "%-4s %-16s %12s %12s %6s\n", "Rank", "Navigator", "Cost ["+mode.Unit()+"]", "Length [m]", "Hops")
	for i, candidate := range ranked {
		label := candidate.Label
		if len(candidate.AlsoFoundBy) > 0 {
			label += " (+" + strconv.Itoa(len(candidate.AlsoFoundBy)) + ")"
		}
		fmt.Fprintf(out, "%-4d %-16s %12.2f %12.1f %6d\n", i+1, label, candidate.Cost, candidate.Length, len(candidate.Path))
	}

	fmt.Fprintln(out)
	for i, candidate := range ranked {
		fmt.Fprintf(out, "%d %v: %v\n", i+1, candidate.Label, routing.EncodePolyline(router.Waypoints(candidate.Path)))
	}
}
