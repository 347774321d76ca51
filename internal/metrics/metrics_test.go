package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gathered returns the counter value or histogram sample count of the series matching labels
func gathered(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	series:
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if want, ok := labels[pair.GetName()]; ok && want != pair.GetValue() {
					continue series
				}
			}
			if metric.GetHistogram() != nil {
				return float64(metric.GetHistogram().GetSampleCount())
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMetric(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveOracle(OracleOk)
	m.ObserveOracle(OracleOk)
	m.ObserveOracle(OracleUnavailable)
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObservePlan("dijkstra", PlanFound, 3*time.Millisecond, 42)

	assert.Equal(t, 2.0, gathered(t, reg, "traffic_routing_oracle_requests_total", map[string]string{"result": OracleOk}))
	assert.Equal(t, 1.0, gathered(t, reg, "traffic_routing_oracle_requests_total", map[string]string{"result": OracleUnavailable}))
	assert.Equal(t, 1.0, gathered(t, reg, "traffic_routing_speed_cache_lookups_total", map[string]string{"result": "hit"}))
	assert.Equal(t, 1.0, gathered(t, reg, "traffic_routing_planner_runs_total", map[string]string{"strategy": "dijkstra", "outcome": PlanFound}))
	assert.Equal(t, 1.0, gathered(t, reg, "traffic_routing_planner_duration_seconds", map[string]string{"strategy": "dijkstra"}))
	assert.Equal(t, 1.0, gathered(t, reg, "traffic_routing_planner_settled_nodes", map[string]string{"strategy": "dijkstra"}))
	assert.Zero(t, gathered(t, reg, "traffic_routing_planner_runs_total", map[string]string{"strategy": "astar"}))
}

func TestNilMetric(t *testing.T) {
	var m *Metric
	assert.NotPanics(t, func() {
		m.ObserveOracle(OracleOk)
		m.ObserveCache(true)
		m.ObservePlan("astar", PlanNoPath, time.Second, 0)
	})
}
