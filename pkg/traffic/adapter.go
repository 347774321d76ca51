package traffic

import (
	"context"
	"math"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/natevvv/osm-traffic-routing/internal/metrics"
	geo "github.com/natevvv/osm-traffic-routing/pkg/geometry"
)

const (
	DefaultCacheSize       = 4096
	DefaultCacheTTL        = 2 * time.Minute
	DefaultBucketPrecision = 1e-4 // degrees, roughly 11 m of latitude
)

// bucket is a quantized coordinate used as cache key
type bucket struct {
	lat, lon int64
}

type AdapterOption func(*Adapter)

// Adapter turns oracle readings into a usable speed.
// Lookups never fail: unknown speeds and oracle errors resolve to the default speed.
// It is safe for concurrent use.
type Adapter struct {
	oracle       Oracle
	defaultSpeed float64
	precision    float64
	cacheSize    int
	cacheTTL     time.Duration
	cache        *expirable.LRU[bucket, float64]
	logger       *zap.Logger
	metrics      *metrics.Metric
}

func WithDefaultSpeed(kmh float64) AdapterOption {
	return func(a *Adapter) {
		if kmh > 0 {
			a.defaultSpeed = kmh
		}
	}
}

// WithCache configures the speed cache. A size <= 0 disables caching.
func WithCache(size int, ttl time.Duration) AdapterOption {
	return func(a *Adapter) {
		a.cacheSize = size
		a.cacheTTL = ttl
	}
}

// WithBucketPrecision sets the edge length of a cache bucket in degrees.
func WithBucketPrecision(degrees float64) AdapterOption {
	return func(a *Adapter) {
		if degrees > 0 {
			a.precision = degrees
		}
	}
}

func WithLogger(logger *zap.Logger) AdapterOption {
	return func(a *Adapter) { a.logger = logger }
}

func WithMetrics(m *metrics.Metric) AdapterOption {
	return func(a *Adapter) { a.metrics = m }
}

// NewAdapter wraps oracle. A nil oracle always yields the default speed.
func NewAdapter(oracle Oracle, options ...AdapterOption) *Adapter {
	a := &Adapter{
		oracle:       oracle,
		defaultSpeed: DefaultSpeed,
		precision:    DefaultBucketPrecision,
		cacheSize:    DefaultCacheSize,
		cacheTTL:     DefaultCacheTTL,
		logger:       zap.NewNop(),
	}
	for _, option := range options {
		option(a)
	}
	if a.cacheSize > 0 {
		a.cache = expirable.NewLRU[bucket, float64](a.cacheSize, nil, a.cacheTTL)
	}
	return a
}

func (a *Adapter) DefaultSpeed() float64 {
	return a.defaultSpeed
}

// HasOracle is false if every speed is the default speed
func (a *Adapter) HasOracle() bool {
	return a.oracle != nil
}

func (a *Adapter) bucketOf(p geo.Point) bucket {
	return bucket{
		lat: int64(math.Round(p.Lat() / a.precision)),
		lon: int64(math.Round(p.Lon() / a.precision)),
	}
}

// SpeedAt returns the speed in km/h to assume at p.
// Failed lookups are cached as well, so an unreachable oracle is asked at most once per bucket and TTL.
func (a *Adapter) SpeedAt(ctx context.Context, p geo.Point) float64 {
	if a.oracle == nil {
		return a.defaultSpeed
	}

	var key bucket
	if a.cache != nil {
		key = a.bucketOf(p)
		if speed, ok := a.cache.Get(key); ok {
			a.metrics.ObserveCache(true)
			return speed
		}
		a.metrics.ObserveCache(false)
	}

	speed, ok := a.lookup(ctx, p)
	// a cancelled request says nothing about the oracle
	if a.cache != nil && (ok || ctx.Err() == nil) {
		a.cache.Add(key, speed)
	}
	return speed
}

func (a *Adapter) lookup(ctx context.Context, p geo.Point) (float64, bool) {
	reading, err := a.oracle.Speed(ctx, p.Lat(), p.Lon())
	if err != nil {
		a.metrics.ObserveOracle(metrics.OracleUnavailable)
		a.logger.Warn("Traffic lookup failed, using default speed",
			zap.Float64("lat", p.Lat()), zap.Float64("lon", p.Lon()),
			zap.Float64("speed", a.defaultSpeed), zap.Error(err))
		return a.defaultSpeed, false
	}
	if !reading.Known() {
		a.metrics.ObserveOracle(metrics.OracleUnknown)
		return a.defaultSpeed, true
	}
	a.metrics.ObserveOracle(metrics.OracleOk)
	return reading.Speed(), true
}

// Reading returns the raw oracle reading at p without fallback or caching.
func (a *Adapter) Reading(ctx context.Context, p geo.Point) (Reading, error) {
	if a.oracle == nil {
		return Reading{}, nil
	}
	return a.oracle.Speed(ctx, p.Lat(), p.Lon())
}
