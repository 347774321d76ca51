// Package metrics holds the Prometheus collectors of the routing service.
// A nil *Metric is valid and records nothing, so library code can run without a registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "traffic_routing"

// oracle lookup results
const (
	OracleOk          = "ok"
	OracleUnknown     = "unknown"
	OracleUnavailable = "unavailable"
)

// planner run outcomes
const (
	PlanFound   = "found"
	PlanNoPath  = "no_path"
	PlanInvalid = "invalid"
	PlanAborted = "aborted"
)

type Metric struct {
	oracleRequests  *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	plannerRuns     *prometheus.CounterVec
	plannerDuration *prometheus.HistogramVec
	settledNodes    *prometheus.HistogramVec
}

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Metric {
	factory := promauto.With(reg)
	return &Metric{
		oracleRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_requests_total",
			Help:      "Traffic oracle lookups by result.",
		}, []string{"result"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speed_cache_lookups_total",
			Help:      "Speed cache lookups by result (hit, miss).",
		}, []string{"result"}),
		plannerRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "planner_runs_total",
			Help:      "Planner invocations by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		plannerDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "planner_duration_seconds",
			Help:      "Planner runtime by strategy.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		}, []string{"strategy"}),
		settledNodes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "planner_settled_nodes",
			Help:      "Nodes taken from the priority queue per planner run.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 12),
		}, []string{"strategy"}),
	}
}

func (m *Metric) ObserveOracle(result string) {
	if m == nil {
		return
	}
	m.oracleRequests.WithLabelValues(result).Inc()
}

func (m *Metric) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metric) ObservePlan(strategy, outcome string, elapsed time.Duration, settled int) {
	if m == nil {
		return
	}
	m.plannerRuns.WithLabelValues(strategy, outcome).Inc()
	m.plannerDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	m.settledNodes.WithLabelValues(strategy).Observe(float64(settled))
}
