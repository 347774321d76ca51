package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/natevvv/osm-traffic-routing/pkg/cost"
	"github.com/natevvv/osm-traffic-routing/pkg/graph"
	p "github.com/natevvv/osm-traffic-routing/pkg/graph/path"
	"github.com/natevvv/osm-traffic-routing/pkg/slice"
)

// relative difference up to which two costs are considered equal
const costTolerance = 1e-9

type target struct {
	origin, destination graph.NodeId
	cost                float64
	hops                int
}

func main() {
	useRandomTargets := flag.Bool("random", false, "Create (new) random targets")
	amountTargets := flag.Int("n", 100, "How many new targets should get created")
	storeTargets := flag.Bool("store", false, "Store targets (when newly generated)")
	seed := flag.Int64("seed", 0, "Seed for random targets, 0 uses the current time")
	algorithm := flag.String("search", "dijkstra", "Select the search algorithm (dijkstra, astar, bidirectional, bidirectional-dijkstra, first-intersection, rl, reference)")
	costMode := flag.String("mode", "distance", "Cost mode (distance, static)")
	cpuProfile := flag.String("cpu", "", "write cpu profile to file")
	graphFile := flag.String("graph", "graphs/road_graph.fmi", "Select the graph to work with")
	flag.Parse()

	mode, err := cost.ModeFromString(*costMode)
	if err != nil {
		log.Fatal(err)
	}
	if mode == cost.TRAFFIC {
		// live speeds change between the reference and the measured run
		log.Fatal("traffic mode can not be benchmarked against a reference")
	}

	start := time.Now()
	g, err := graph.NewAdjacencyArrayFromFmiFile(*graphFile)
	if err != nil {
		log.Fatal(err)
	}
	elapsed := time.Since(start)
	fmt.Printf("[TIME-Import] = %s\n", elapsed)
	fmt.Printf("Nodes: %v, Arcs: %v\n", g.NodeCount(), g.ArcCount())

	model := cost.NewModel(mode, cost.WithHeuristicSpeed(math.Max(cost.HeuristicSpeed, cost.FastestSpeed(g))))
	navigator := getNavigator(*algorithm, g, model)
	if navigator == nil {
		log.Fatal("Navigator not supported")
	}
	referenceDijkstra := p.NewReferenceDijkstra(g, model)

	targetFile := filepath.Join(filepath.Dir(*graphFile), fmt.Sprintf("targets_%v.txt", mode))
	var targets []target
	if *useRandomTargets {
		targets = createTargets(*amountTargets, *seed, referenceDijkstra)
		if *storeTargets {
			if err := writeTargets(targets, targetFile); err != nil {
				log.Fatal(err)
			}
		}
	} else {
		targets, err = readTargets(targetFile)
		if err != nil {
			log.Fatal(err)
		}
		if *amountTargets < len(targets) {
			targets = targets[0:*amountTargets]
		}
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}
	benchmark(navigator, targets)
}

func getNavigator(algorithm string, g graph.Graph, model *cost.Model) p.Navigator {
	if slice.Contains([]string{"default", "dijkstra"}, algorithm) {
		return p.NewDijkstra(g, model)
	} else if algorithm == "reference" {
		return p.NewReferenceDijkstra(g, model)
	} else if algorithm == "astar" {
		return p.NewAStar(g, model)
	} else if algorithm == "bidirectional" {
		return p.NewBidirectional(g, model)
	} else if algorithm == "bidirectional-dijkstra" {
		bid := p.NewUniversalDijkstra(g, model)
		bid.SetBidirectional(true)
		return bid
	} else if algorithm == "first-intersection" {
		bid := p.NewBidirectional(g, model)
		bid.SetMeetingRule(p.FIRST_INTERSECTION)
		return bid
	} else if algorithm == "rl" {
		return p.NewQLearning(g, model, p.DefaultQLearningOptions())
	}
	return nil
}

func readTargets(filename string) ([]target, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Split(bufio.ScanLines)

	targets := make([]target, 0)

	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 1 {
			// skip empty lines
			continue
		} else if line[0] == '#' {
			// skip comments
			continue
		}
		var t target
		if _, err := fmt.Sscanf(line, "%d %d %g %d", &t.origin, &t.destination, &t.cost, &t.hops); err != nil {
			return nil, fmt.Errorf("target %q: %w", line, err)
		}
		targets = append(targets, t)
	}
	return targets, scanner.Err()
}

func createTargets(n int, seed int64, referenceNavigator p.Navigator) []target {
	// targets: origin, destination, cost, #hops (nodes from source to target)
	targets := make([]target, n)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	nodeCount := referenceNavigator.GetGraph().NodeCount()
	// reference algorithm to compute path
	for i := 0; i < n; i++ {
		origin := rng.Intn(nodeCount)
		destination := rng.Intn(nodeCount)
		result, err := referenceNavigator.ComputeShortestPath(context.Background(), origin, destination)
		if err != nil {
			log.Fatal(err)
		}
		targets[i] = target{origin: origin, destination: destination, cost: result.Cost, hops: len(result.Path)}
	}
	return targets
}

func writeTargets(targets []target, targetFile string) error {
	var sb strings.Builder
	sb.WriteString("# origin destination cost hops\n")
	for _, t := range targets {
		sb.WriteString(fmt.Sprintf("%v %v %v %v\n", t.origin, t.destination, t.cost, t.hops))
	}

	file, err := os.Create(targetFile)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.WriteString(sb.String()); err != nil {
		return err
	}
	return writer.Flush()
}

func sameCost(a, b float64) bool {
	return math.Abs(a-b) <= costTolerance*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// Run benchmarks on the provided graphs and targets
func benchmark(navigator p.Navigator, targets []target) {
	var runtime time.Duration = 0
	completed := 0

	kpis := p.SearchKPIs{}

	invalidCosts := make([]int, 0)
	invalidResults := make([]int, 0)
	invalidHops := make([]int, 0)
	costs := make([]float64, len(targets))
	hops := make([]int, len(targets))

	showResults := func() {
		if completed == 0 {
			fmt.Println("No target completed")
			return
		}
		fmt.Printf("Navigator: %v\n", navigator.Name())
		fmt.Printf("Average runtime: %.3fms\n", float64(runtime.Nanoseconds())/float64(completed)/1000000)
		fmt.Printf("Average pq pops: %d\n", kpis.PqPops/completed)
		fmt.Printf("Average pq updates: %d\n", kpis.PqUpdates/completed)
		fmt.Printf("Average settled nodes: %d\n", kpis.SettledNodes/completed)
		fmt.Printf("Average relaxations attempts: %d\n", kpis.RelaxationAttempts/completed)
		fmt.Printf("Average edge relaxations: %d\n", kpis.RelaxedEdges/completed)

		fmt.Printf("%v/%v invalid Result (source/target).\n", len(invalidResults), completed)
		for i, testcase := range invalidResults {
			fmt.Printf("%v: Case %v (%v -> %v) has invalid result\n", i, testcase, targets[testcase].origin, targets[testcase].destination)
		}

		fmt.Printf("%v/%v invalid path costs.\n", len(invalidCosts), completed)
		for i, testcase := range invalidCosts {
			actual, reference := costs[testcase], targets[testcase].cost
			fmt.Printf("%v: Case %v (%v -> %v) has invalid cost. Has: %v, Reference: %v, Difference: %v\n", i, testcase, targets[testcase].origin, targets[testcase].destination, actual, reference, actual-reference)
		}

		fmt.Printf("%v/%v different hops number.\n", len(invalidHops), completed)
		for i, testcase := range invalidHops {
			actual, reference := hops[testcase], targets[testcase].hops
			fmt.Printf("%v: Case %v (%v -> %v) has different #hops. Has: %v, reference: %v, difference: %v\n", i, testcase, targets[testcase].origin, targets[testcase].destination, actual, reference, actual-reference)
		}
	}

	// catch interrupt to still show already calculated results
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		showResults()
		os.Exit(0)
	}()

	for i, t := range targets {
		start := time.Now()
		result, err := navigator.ComputeShortestPath(context.Background(), t.origin, t.destination)
		elapsed := time.Since(start)
		if err != nil {
			log.Fatal(err)
		}

		kpis.Add(result.KPIs)
		costs[i] = result.Cost
		hops[i] = len(result.Path)

		fmt.Printf("[%3v TIME-Navigate, PQ Pops, PQ Updates, relaxed Edges, relax attempts] = %12s, %7d, %7d, %7d, %7d\n", i, elapsed, result.KPIs.PqPops, result.KPIs.PqUpdates, result.KPIs.RelaxedEdges, result.KPIs.RelaxationAttempts)

		if !sameCost(result.Cost, t.cost) {
			invalidCosts = append(invalidCosts, i)
		}
		if result.Found() && !p.IsValidPath(navigator.GetGraph(), result.Path) {
			invalidResults = append(invalidResults, i)
		} else if result.Found() && (result.Path[0] != t.origin || result.Path[len(result.Path)-1] != t.destination) {
			invalidResults = append(invalidResults, i)
		}
		if t.hops != len(result.Path) {
			// equal costs with different hops are fine
			invalidHops = append(invalidHops, i)
		}

		runtime += elapsed
		completed++
	}
	// normal termination, show results
	showResults()
}
