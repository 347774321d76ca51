package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/natevvv/osm-traffic-routing/internal/config"
	"github.com/natevvv/osm-traffic-routing/internal/logging"
	"github.com/natevvv/osm-traffic-routing/internal/metrics"
	"github.com/natevvv/osm-traffic-routing/pkg/graph"
	"github.com/natevvv/osm-traffic-routing/pkg/routing"
	server "github.com/natevvv/osm-traffic-routing/pkg/server/openapi_server"
	"github.com/natevvv/osm-traffic-routing/pkg/traffic"
)

func main() {
	configFile := flag.String("config", config.DefaultFile, "configuration file")
	graphFile := flag.String("graph", "", "graph file, overrides the configuration")
	address := flag.String("address", "", "listen address, overrides the configuration")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	logger := logging.Must(cfg.Log.Level, cfg.Log.Development)
	defer logger.Sync()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.String("file", *configFile), zap.Error(err))
	}
	if *graphFile != "" {
		cfg.Graph = *graphFile
	}
	if *address != "" {
		cfg.Server.Address = *address
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	start := time.Now()
	g, err := graph.NewAdjacencyArrayFromFmiFile(cfg.Graph)
	if err != nil {
		logger.Fatal("Loading graph failed", zap.String("file", cfg.Graph), zap.Error(err))
	}
	if err := graph.Validate(g); err != nil {
		logger.Fatal("Invalid graph", zap.String("file", cfg.Graph), zap.Error(err))
	}
	logger.Info("Graph loaded",
		zap.String("file", cfg.Graph),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("arcs", g.ArcCount()),
		zap.Duration("elapsed", time.Since(start)))

	oracle, err := cfg.Oracle()
	if err != nil {
		logger.Warn("No traffic oracle, using the default speed", zap.Error(err))
	}
	adapter := traffic.NewAdapter(oracle,
		traffic.WithDefaultSpeed(cfg.Routing.DefaultSpeed),
		traffic.WithCache(cfg.Traffic.CacheSize, cfg.Traffic.CacheTTL),
		traffic.WithBucketPrecision(cfg.Traffic.BucketPrecision),
		traffic.WithLogger(logger.Named("traffic")),
		traffic.WithMetrics(m))

	router := routing.NewRouter(g, adapter,
		routing.WithStrategy(cfg.Routing.Navigator),
		routing.WithMode(cfg.Routing.Mode),
		routing.WithHeuristicSpeed(cfg.Routing.HeuristicSpeed),
		routing.WithDefaultSpeed(cfg.Routing.DefaultSpeed),
		routing.WithMaxSpeed(cfg.Routing.MaxSpeed),
		routing.WithMeetingRule(cfg.MeetingRule()),
		routing.WithQLearningOptions(cfg.QLearningOptions()),
		routing.WithTimeout(cfg.Routing.Timeout),
		routing.WithLogger(logger.Named("routing")),
		routing.WithMetrics(m))

	service := server.NewDefaultApiService(router, adapter,
		server.WithRankCount(cfg.Routing.RankCount),
		server.WithServiceLogger(logger.Named("api")))
	controller := server.NewDefaultApiController(service)
	handler := server.NewRouter(logger.Named("http"), controller)
	handler.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
	}
}
