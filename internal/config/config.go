// Package config reads the YAML configuration of the routing service.
// Secrets are never part of the file, they are taken from the environment (optionally loaded from .env).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/natevvv/osm-traffic-routing/pkg/cost"
	"github.com/natevvv/osm-traffic-routing/pkg/graph/path"
	"github.com/natevvv/osm-traffic-routing/pkg/routing"
	"github.com/natevvv/osm-traffic-routing/pkg/traffic"
)

const DefaultFile = "config.yaml"

// traffic providers
const (
	ProviderTomTom   = "tomtom"
	ProviderConstant = "constant"
	ProviderNone     = "none"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Graph   string        `yaml:"graph"` // FMI file
	Server  ServerConfig  `yaml:"server"`
	Routing RoutingConfig `yaml:"routing"`
	RL      RLConfig      `yaml:"rl"`
	Traffic TrafficConfig `yaml:"traffic"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read-timeout"`
	WriteTimeout    time.Duration `yaml:"write-timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown-timeout"`
}

type RoutingConfig struct {
	Navigator      routing.Strategy `yaml:"navigator"`
	Mode           cost.Mode        `yaml:"mode"`
	MeetingRule    string           `yaml:"meeting-rule"`
	HeuristicSpeed float64          `yaml:"heuristic-speed"` // km/h
	DefaultSpeed   float64          `yaml:"default-speed"`   // km/h
	MaxSpeed       float64          `yaml:"max-speed"`       // km/h, cap of live speeds
	RankCount      int              `yaml:"rank-count"`
	Timeout        time.Duration    `yaml:"timeout"` // per request, 0 disables
}

type RLConfig struct {
	K        int     `yaml:"k"`
	Episodes int     `yaml:"episodes"`
	Alpha    float64 `yaml:"alpha"`
	Gamma    float64 `yaml:"gamma"`
	Epsilon  float64 `yaml:"epsilon"`
	Workers  int     `yaml:"workers"`
	Seed     int64   `yaml:"seed"`
}

type TrafficConfig struct {
	Provider        string        `yaml:"provider"`
	APIKeyEnv       string        `yaml:"api-key-env"` // name of the variable holding the key
	BaseURL         string        `yaml:"base-url"`
	RequestTimeout  time.Duration `yaml:"request-timeout"`
	ConstantSpeed   float64       `yaml:"constant-speed"`
	CacheSize       int           `yaml:"cache-size"`
	CacheTTL        time.Duration `yaml:"cache-ttl"`
	BucketPrecision float64       `yaml:"bucket-precision"` // degrees

	APIKey string `yaml:"-"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used for every omitted value
func Default() Config {
	rl := path.DefaultQLearningOptions()
	return Config{
		Graph: "graph.fmi",
		Server: ServerConfig{
			Address:         ":8081",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Routing: RoutingConfig{
			Navigator:      routing.DIJKSTRA,
			Mode:           cost.TRAFFIC,
			MeetingRule:    path.OPTIMAL.String(),
			HeuristicSpeed: cost.HeuristicSpeed,
			DefaultSpeed:   cost.DefaultSpeed,
			MaxSpeed:       cost.MaxSpeed,
			RankCount:      routing.DefaultRankCount,
			Timeout:        30 * time.Second,
		},
		RL: RLConfig{
			K:        rl.K,
			Episodes: rl.Episodes,
			Alpha:    rl.Alpha,
			Gamma:    rl.Gamma,
			Epsilon:  rl.Epsilon,
			Workers:  rl.Workers,
			Seed:     rl.Seed,
		},
		Traffic: TrafficConfig{
			Provider:        ProviderTomTom,
			APIKeyEnv:       "TOMTOM_API_KEY",
			BaseURL:         traffic.TomTomBaseURL,
			RequestTimeout:  5 * time.Second,
			CacheSize:       traffic.DefaultCacheSize,
			CacheTTL:        traffic.DefaultCacheTTL,
			BucketPrecision: traffic.DefaultBucketPrecision,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration file and the given env files (.env if none given).
// A missing config file is only an error if it was not the default one.
// Missing env files are ignored.
func Load(filename string, envFiles ...string) (Config, error) {
	config := Default()
	data, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, os.ErrNotExist) && filename == DefaultFile:
		data = nil
	case err != nil:
		return config, fmt.Errorf("read config: %w", err)
	}

	if config, err = Parse(data); err != nil {
		return config, fmt.Errorf("%v: %w", filename, err)
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, envFile := range envFiles {
		// existing variables win over the file
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return config, fmt.Errorf("load %v: %w", envFile, err)
		}
	}
	config.Traffic.APIKey = os.Getenv(config.Traffic.APIKeyEnv)
	return config, config.Validate()
}

// Parse decodes YAML on top of the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	config := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("decode config: %w", err)
	}
	return config, nil
}

func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.Graph != "", "graph file is empty")
	check(c.Routing.HeuristicSpeed > 0, "heuristic speed %v must be positive", c.Routing.HeuristicSpeed)
	check(c.Routing.DefaultSpeed > 0, "default speed %v must be positive", c.Routing.DefaultSpeed)
	check(c.Routing.MaxSpeed > 0, "max speed %v must be positive", c.Routing.MaxSpeed)
	check(c.Routing.RankCount > 0, "rank count %v must be positive", c.Routing.RankCount)
	check(c.Routing.Timeout >= 0, "negative timeout %v", c.Routing.Timeout)
	if _, err := path.MeetingRuleFromString(c.Routing.MeetingRule); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}
	if err := c.QLearningOptions().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}
	check(c.RL.Workers > 0, "rl workers %v must be positive", c.RL.Workers)

	switch c.Traffic.Provider {
	case ProviderTomTom:
		check(c.Traffic.APIKeyEnv != "", "tomtom provider needs api-key-env")
	case ProviderConstant:
		check(c.Traffic.ConstantSpeed > 0, "constant speed %v must be positive", c.Traffic.ConstantSpeed)
	case ProviderNone:
	default:
		check(false, "unknown traffic provider %q", c.Traffic.Provider)
	}
	check(c.Traffic.CacheSize <= 0 || c.Traffic.CacheTTL > 0, "cache ttl %v must be positive", c.Traffic.CacheTTL)
	check(c.Traffic.BucketPrecision > 0, "bucket precision %v must be positive", c.Traffic.BucketPrecision)

	return errors.Join(errs...)
}

func (c Config) MeetingRule() path.MeetingRule {
	rule, _ := path.MeetingRuleFromString(c.Routing.MeetingRule)
	return rule
}

func (c Config) QLearningOptions() path.QLearningOptions {
	return path.QLearningOptions{
		K:        c.RL.K,
		Episodes: c.RL.Episodes,
		Alpha:    c.RL.Alpha,
		Gamma:    c.RL.Gamma,
		Epsilon:  c.RL.Epsilon,
		Workers:  c.RL.Workers,
		Seed:     c.RL.Seed,
	}
}

// Oracle creates the traffic oracle of the configured provider, nil for "none".
func (c Config) Oracle() (traffic.Oracle, error) {
	switch c.Traffic.Provider {
	case ProviderTomTom:
		if c.Traffic.APIKey == "" {
			return nil, fmt.Errorf("%w: %v is not set", ErrInvalidConfig, c.Traffic.APIKeyEnv)
		}
		return traffic.NewTomTomClient(c.Traffic.APIKey,
			traffic.WithBaseURL(c.Traffic.BaseURL),
			traffic.WithTimeout(c.Traffic.RequestTimeout)), nil
	case ProviderConstant:
		return traffic.Constant(c.Traffic.ConstantSpeed), nil
	}
	return nil, nil
}
