package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/tierviz/pkg/cache"
	"github.com/matzehuels/tierviz/pkg/chart"
	"github.com/matzehuels/tierviz/pkg/layout"
	"github.com/matzehuels/tierviz/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner keeps no per-run state, so multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Source Source
	Logger *log.Logger

	// LayoutOptions are applied to every layout computation, usually
	// from config.Config.LayoutOptions.
	LayoutOptions []layout.Option

	// TTL applies to datasets and layouts written to the cache.
	TTL time.Duration
}

// NewRunner creates a runner. A nil keyer becomes a DefaultKeyer and a
// nil cache disables caching. src may be nil when only dataset files are
// laid out.
func NewRunner(c cache.Cache, keyer cache.Keyer, src Source, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Source: src,
		Logger: logger,
		TTL:    DefaultTTL,
	}
}

// Execute runs acquire → layout.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := &Result{}

	acquireStart := time.Now()
	d, hit, err := r.AcquireWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Dataset = d
	result.Stats.AcquireTime = time.Since(acquireStart)
	result.Stats.Objectives = len(d.Objectives)
	result.Stats.Categories = len(d.Categories)
	result.CacheInfo.DatasetHit = hit

	r.Logger.Info("acquired dataset",
		"scenario", d.Scenario,
		"baseline", d.BaselineScenario,
		"objectives", len(d.Objectives),
		"cached", hit,
		"duration", result.Stats.AcquireTime)

	layoutStart := time.Now()
	l, hit, err := r.ComputeLayoutWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Marks = len(l.Marks)
	result.CacheInfo.LayoutHit = hit

	r.Logger.Info("computed layout",
		"mode", l.Mode,
		"marks", len(l.Marks),
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	return result, nil
}

// ComputeLayoutWithCacheInfo lays out d and reports whether the marks came
// from the cache. A cached layout gets a fresh ID and CreatedAt.
//
// Comparison marks are produced when d carries a baseline scenario.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, d chart.Dataset, opts Options) (chart.Layout, bool, error) {
	opts.SetDefaults()
	if err := opts.ValidateForLayout(); err != nil {
		return chart.Layout{}, false, err
	}
	if err := ctx.Err(); err != nil {
		return chart.Layout{}, false, err
	}
	mode, _ := chart.ParseMode(opts.Mode)

	key := r.Keyer.LayoutKey(d.Hash(), cache.LayoutKeyOpts{
		Mode:       string(mode),
		Width:      opts.Width,
		Height:     opts.Height,
		Comparison: d.Comparison(),
		Geometry:   r.geometryHash(),
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if l, err := chart.UnmarshalLayout(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				l.ID = uuid.NewString()
				l.CreatedAt = time.Now().UTC()
				return l, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, string(mode), len(d.Objectives))
	start := time.Now()
	layoutOpts := append(append([]layout.Option{}, r.LayoutOptions...), layout.WithLogger(opts.Logger))
	l := chart.Compute(mode, d, opts.Width, opts.Height, d.Comparison(), layoutOpts...)
	hooks.OnLayoutComplete(ctx, string(mode), len(l.Marks), time.Since(start), nil)

	data, err := chart.MarshalLayout(l)
	if err != nil {
		return chart.Layout{}, false, fmt.Errorf("serialize layout: %w", err)
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}
	return l, false, nil
}

// ComputeLayout is ComputeLayoutWithCacheInfo without the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, d chart.Dataset, opts Options) (chart.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, d, opts)
	return l, err
}

// geometryHash identifies the runner's layout configuration so layouts
// computed with different margins or dot sizes do not share cache entries.
func (r *Runner) geometryHash() string {
	cfg := layout.DefaultConfig()
	for _, opt := range r.LayoutOptions {
		opt(&cfg)
	}
	cfg.Logger = nil
	data, _ := json.Marshal(cfg)
	return cache.Hash(data)[:16]
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
