package scenery

import (
	"math"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/skyframe-dev/xplm-sdk/domain/entities"
	"github.com/skyframe-dev/xplm-sdk/domain/errors"
	"github.com/skyframe-dev/xplm-sdk/handle"
	"github.com/skyframe-dev/xplm-sdk/internal/callctx"
)

// Defaults for RateLimited.
const (
	DefaultProbeRate  = 60.0
	DefaultProbeBurst = 8
	DefaultCacheSize  = 256
	DefaultCacheTTL   = 2 * time.Second
	DefaultCellSize   = 5.0
)

type cell struct {
	x int64
	z int64
}

// RateStats counts how RateLimited answered.
type RateStats struct {
	Hits    int
	Probes  int
	Limited int
}

// RateLimited wraps a probe with a token bucket and a short-lived cache of
// hits keyed by position rounded to a grid. When the bucket is empty and
// the cell is not cached, the query fails with NoData instead of reaching
// the host.
type RateLimited struct {
	probe    *Probe
	limiter  *rate.Limiter
	cache    *expirable.LRU[cell, entities.ProbeResult]
	cellSize float64
	now      func() time.Time
	stats    RateStats
}

// RateOption configures a RateLimited prober.
type RateOption func(*rateConfig)

type rateConfig struct {
	hz       float64
	burst    int
	size     int
	ttl      time.Duration
	cellSize float64
	now      func() time.Time
}

// WithRate sets the sustained probe rate and burst.
func WithRate(hz float64, burst int) RateOption {
	return func(c *rateConfig) {
		c.hz = hz
		c.burst = burst
	}
}

// WithCache sets the cache size and entry lifetime. A lifetime of zero or
// less means DefaultCacheTTL; entries always expire.
func WithCache(size int, ttl time.Duration) RateOption {
	return func(c *rateConfig) {
		c.size = size
		c.ttl = ttl
	}
}

// WithCellSize sets the grid spacing, in meters, used as the cache key.
func WithCellSize(meters float64) RateOption {
	return func(c *rateConfig) {
		c.cellSize = meters
	}
}

// WithClock sets the clock the token bucket reads.
func WithClock(now func() time.Time) RateOption {
	return func(c *rateConfig) {
		c.now = now
	}
}

// RateLimited returns a rate limited, caching view of p.
func (p *Probe) RateLimited(opts ...RateOption) *RateLimited {
	cfg := rateConfig{
		hz:       DefaultProbeRate,
		burst:    DefaultProbeBurst,
		size:     DefaultCacheSize,
		ttl:      DefaultCacheTTL,
		cellSize: DefaultCellSize,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.cellSize <= 0 {
		cfg.cellSize = DefaultCellSize
	}
	if cfg.ttl <= 0 {
		cfg.ttl = DefaultCacheTTL
	}
	return &RateLimited{
		probe:    p,
		limiter:  rate.NewLimiter(rate.Limit(cfg.hz), cfg.burst),
		cache:    expirable.NewLRU[cell, entities.ProbeResult](cfg.size, nil, cfg.ttl),
		cellSize: cfg.cellSize,
		now:      cfg.now,
	}
}

// ProbeTerrain answers from the cache when it can, else probes the host if
// the bucket allows it. Once the probe is released every call fails with
// UseAfterRelease, cached cells included.
func (r *RateLimited) ProbeTerrain(pos entities.LocalPoint) (entities.ProbeResult, error) {
	if _, err := handle.Raw(r.probe.svc.registry, r.probe.id); err != nil {
		r.cache.Purge()
		return entities.ProbeResult{}, err
	}
	if err := r.probe.svc.calls.Require("scenery.probe_terrain", callctx.Sim...); err != nil {
		return entities.ProbeResult{}, err
	}

	key := cell{
		x: int64(math.Floor(pos.X / r.cellSize)),
		z: int64(math.Floor(pos.Z / r.cellSize)),
	}
	if result, ok := r.cache.Get(key); ok {
		r.stats.Hits++
		return result, nil
	}
	if !r.limiter.AllowN(r.now(), 1) {
		r.stats.Limited++
		return entities.ProbeResult{}, &errors.NoDataError{Query: "terrain probe (rate limited)"}
	}

	r.stats.Probes++
	result, err := r.probe.ProbeTerrain(pos)
	if err != nil {
		return entities.ProbeResult{}, err
	}
	r.cache.Add(key, result)
	return result, nil
}

// Stats returns the answer counters.
func (r *RateLimited) Stats() RateStats { return r.stats }

// Purge drops every cached answer.
func (r *RateLimited) Purge() { r.cache.Purge() }
