package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/tierviz/pkg/chart"
	"github.com/matzehuels/tierviz/pkg/errors"
	"github.com/matzehuels/tierviz/pkg/integrations"
	"github.com/matzehuels/tierviz/pkg/integrations/coeqwal"
	"github.com/matzehuels/tierviz/pkg/observability"
)

// Source fetches scenario datasets. *coeqwal.Client implements it.
type Source interface {
	FetchScenario(ctx context.Context, scenarioID string, tiers []string) (chart.Dataset, error)
}

// AcquireWithCacheInfo loads the dataset described by opts and reports
// whether it came from the cache. Datasets read from files are never
// cached.
func (r *Runner) AcquireWithCacheInfo(ctx context.Context, opts Options) (chart.Dataset, bool, error) {
	opts.SetDefaults()
	if err := opts.ValidateForAcquire(); err != nil {
		return chart.Dataset{}, false, err
	}

	if opts.Input != "" {
		d, err := r.acquireFile(ctx, opts)
		return d, false, err
	}

	key := r.Keyer.DatasetKey(opts.Scenario, opts.DatasetKeyOpts())
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var d chart.Dataset
			if err := json.Unmarshal(data, &d); err == nil {
				observability.Cache().OnCacheHit(ctx, "dataset")
				return d, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "dataset")
	}

	hooks := observability.Pipeline()
	hooks.OnAcquireStart(ctx, opts.Scenario)
	start := time.Now()
	d, err := r.fetch(ctx, opts)
	hooks.OnAcquireComplete(ctx, opts.Scenario, len(d.Objectives), time.Since(start), err)
	if err != nil {
		return chart.Dataset{}, false, err
	}

	if data, err := json.Marshal(d); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "dataset", len(data))
		}
	}
	return d, false, nil
}

// Acquire is AcquireWithCacheInfo without the cache hit info.
func (r *Runner) Acquire(ctx context.Context, opts Options) (chart.Dataset, error) {
	d, _, err := r.AcquireWithCacheInfo(ctx, opts)
	return d, err
}

func (r *Runner) acquireFile(ctx context.Context, opts Options) (chart.Dataset, error) {
	d, err := chart.ReadDatasetFile(opts.Input)
	if stderrors.Is(err, fs.ErrNotExist) {
		return chart.Dataset{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset file not found")
	}
	if err != nil {
		return chart.Dataset{}, err
	}
	if !opts.Comparison() {
		return d, nil
	}

	base, err := r.fetchOne(ctx, opts.Baseline, d.Tiers)
	if err != nil {
		return chart.Dataset{}, err
	}
	return withBaseline(d, base), nil
}

// fetch loads the scenario and, when requested, its baseline in parallel.
func (r *Runner) fetch(ctx context.Context, opts Options) (chart.Dataset, error) {
	var current, base chart.Dataset

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = r.fetchOne(gctx, opts.Scenario, opts.Tiers)
		return err
	})
	if opts.Comparison() {
		g.Go(func() error {
			var err error
			base, err = r.fetchOne(gctx, opts.Baseline, opts.Tiers)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return chart.Dataset{}, err
	}

	if current.Empty() {
		r.Logger.Warn("scenario has no objectives", "scenario", opts.Scenario)
	}
	if !opts.Comparison() {
		return current, nil
	}
	return withBaseline(current, base), nil
}

func (r *Runner) fetchOne(ctx context.Context, scenarioID string, tiers []string) (chart.Dataset, error) {
	if r.Source == nil {
		return chart.Dataset{}, errors.New(errors.ErrCodeUnsupported, "no scenario source configured")
	}
	d, err := r.Source.FetchScenario(ctx, scenarioID, tiers)
	switch {
	case err == nil:
		return d, nil
	case stderrors.Is(err, integrations.ErrNotFound):
		return chart.Dataset{}, errors.Wrap(errors.ErrCodeScenarioNotFound, err, "scenario %s not found", scenarioID)
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return chart.Dataset{}, err
	case stderrors.Is(err, integrations.ErrNetwork):
		return chart.Dataset{}, errors.Wrap(errors.ErrCodeNetwork, err, "fetch scenario %s", scenarioID)
	}
	return chart.Dataset{}, fmt.Errorf("fetch scenario %s: %w", scenarioID, err)
}

func withBaseline(current, base chart.Dataset) chart.Dataset {
	current.BaselineScenario = base.Scenario
	current.Objectives = coeqwal.ApplyBaseline(current.Objectives, base.Objectives)
	return current
}
