package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natevvv/osm-traffic-routing/pkg/cost"
	"github.com/natevvv/osm-traffic-routing/pkg/graph/path"
	"github.com/natevvv/osm-traffic-routing/pkg/routing"
	"github.com/natevvv/osm-traffic-routing/pkg/traffic"
)

const sample = `
graph: berlin.fmi
server:
  address: ":9000"
routing:
  navigator: astar
  mode: static
  meeting-rule: first-intersection
  timeout: 2s
rl:
  episodes: 250
  workers: 4
traffic:
  provider: constant
  constant-speed: 30
  cache-ttl: 1m
log:
  level: debug
`

func TestParse(t *testing.T) {
	config, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, "berlin.fmi", config.Graph)
	assert.Equal(t, ":9000", config.Server.Address)
	assert.Equal(t, 10*time.Second, config.Server.ShutdownTimeout)
	assert.Equal(t, routing.ASTAR, config.Routing.Navigator)
	assert.Equal(t, cost.STATIC, config.Routing.Mode)
	assert.Equal(t, path.FIRST_INTERSECTION, config.MeetingRule())
	assert.Equal(t, 2*time.Second, config.Routing.Timeout)
	assert.Equal(t, cost.HeuristicSpeed, config.Routing.HeuristicSpeed)
	assert.Equal(t, cost.MaxSpeed, config.Routing.MaxSpeed)
	assert.Equal(t, time.Minute, config.Traffic.CacheTTL)
	assert.Equal(t, "debug", config.Log.Level)

	options := config.QLearningOptions()
	assert.Equal(t, 250, options.Episodes)
	assert.Equal(t, 4, options.Workers)
	assert.Equal(t, path.DefaultQLearningOptions().K, options.K)

	oracle, err := config.Oracle()
	require.NoError(t, err)
	require.NotNil(t, oracle)
}

func TestParseRejects(t *testing.T) {
	_, err := Parse([]byte("routing:\n  navigator: dfs\n"))
	assert.ErrorIs(t, err, routing.ErrUnknownStrategy)

	_, err = Parse([]byte("routing:\n  mode: scenic\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("graph: a.fmi\nunknown: 1\n"))
	assert.Error(t, err)
}

func TestParseEmpty(t *testing.T) {
	config, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), config)
}

func TestValidate(t *testing.T) {
	invalid := []func(*Config){
		func(c *Config) { c.Graph = "" },
		func(c *Config) { c.Routing.HeuristicSpeed = 0 },
		func(c *Config) { c.Routing.DefaultSpeed = -5 },
		func(c *Config) { c.Routing.MaxSpeed = 0 },
		func(c *Config) { c.Routing.RankCount = 0 },
		func(c *Config) { c.Routing.MeetingRule = "sometimes" },
		func(c *Config) { c.RL.K = 0 },
		func(c *Config) { c.RL.Epsilon = 2 },
		func(c *Config) { c.RL.Workers = 0 },
		func(c *Config) { c.Traffic.Provider = "here" },
		func(c *Config) { c.Traffic.Provider = ProviderConstant },
		func(c *Config) { c.Traffic.BucketPrecision = 0 },
	}
	for i, modify := range invalid {
		config := Default()
		modify(&config)
		assert.ErrorIs(t, config.Validate(), ErrInvalidConfig, "case %v", i)
	}

	config := Default()
	config.Routing.RankCount = 0
	config.RL.K = 0
	// every problem is reported
	assert.Contains(t, config.Validate().Error(), "rank count")
	assert.Contains(t, config.Validate().Error(), "k must be positive")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("graph: test.fmi\ntraffic:\n  api-key-env: ROUTING_TEST_KEY\n"), 0644))
	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("ROUTING_TEST_KEY=secret\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("ROUTING_TEST_KEY") })

	config, err := Load(file, env)
	require.NoError(t, err)
	assert.Equal(t, "test.fmi", config.Graph)
	assert.Equal(t, "secret", config.Traffic.APIKey)

	oracle, err := config.Oracle()
	require.NoError(t, err)
	assert.IsType(t, &traffic.TomTomClient{}, oracle)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOracleWithoutKey(t *testing.T) {
	config := Default()
	_, err := config.Oracle()
	assert.ErrorIs(t, err, ErrInvalidConfig)

	config.Traffic.Provider = ProviderNone
	oracle, err := config.Oracle()
	require.NoError(t, err)
	assert.Nil(t, oracle)
}
