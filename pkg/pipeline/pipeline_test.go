package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/tierviz/pkg/cache"
	"github.com/matzehuels/tierviz/pkg/chart"
	"github.com/matzehuels/tierviz/pkg/errors"
	"github.com/matzehuels/tierviz/pkg/integrations"
	"github.com/matzehuels/tierviz/pkg/layout"
)

type fakeSource struct {
	mu        sync.Mutex
	datasets  map[string]chart.Dataset
	err       error
	calls     map[string]int
	lastTiers []string
}

func newFakeSource() *fakeSource {
	objs := func(tier string) []layout.Objective {
		return []layout.Objective{
			{ID: 0, Tier: "Tier 1", Category: "delta", WaterVolume: 50, UnmetDemand: 5},
			{ID: 1, Tier: tier, Category: "delta", WaterVolume: 80, UnmetDemand: 30, WithinCategoryIndex: 1},
			{ID: 2, Tier: "Tier 3", Category: "salmon", WaterVolume: 20, UnmetDemand: 10},
		}
	}
	return &fakeSource{
		datasets: map[string]chart.Dataset{
			"s0020": {Scenario: "s0020", Categories: []string{"delta", "salmon"}, Tiers: DefaultTiers, Objectives: objs("Tier 2")},
			"s0011": {Scenario: "s0011", Categories: []string{"delta", "salmon"}, Tiers: DefaultTiers, Objectives: objs("Tier 4")},
		},
		calls: make(map[string]int),
	}
}

func (f *fakeSource) FetchScenario(ctx context.Context, id string, tiers []string) (chart.Dataset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++
	f.lastTiers = tiers
	if f.err != nil {
		return chart.Dataset{}, f.err
	}
	d, ok := f.datasets[id]
	if !ok {
		return chart.Dataset{}, fmt.Errorf("fetch scenario %s: %w", id, integrations.ErrNotFound)
	}
	return d, nil
}

func newTestRunner(t *testing.T, src Source) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, src, nil)
}

func TestOptionsSetDefaults(t *testing.T) {
	opts := Options{Scenario: "s0020"}
	opts.SetDefaults()

	if opts.Mode != string(chart.ModeTiers) {
		t.Errorf("Mode = %q, want tiers", opts.Mode)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("canvas = %vx%v, want %vx%v", opts.Width, opts.Height, DefaultWidth, DefaultHeight)
	}
	if diff := cmp.Diff(DefaultTiers, opts.Tiers); diff != "" {
		t.Errorf("tiers mismatch (-want +got):\n%s", diff)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	// Idempotent
	before := opts
	opts.SetDefaults()
	if opts.Mode != before.Mode || opts.Width != before.Width || len(opts.Tiers) != len(before.Tiers) {
		t.Error("second SetDefaults changed options")
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"valid scenario", Options{Scenario: "s0020"}, ""},
		{"valid input", Options{Input: "data.json", Mode: "bar"}, ""},
		{"no source", Options{}, errors.ErrCodeInvalidInput},
		{"both sources", Options{Scenario: "s0020", Input: "x.json"}, errors.ErrCodeInvalidInput},
		{"bad scenario", Options{Scenario: "../etc"}, errors.ErrCodeInvalidScenario},
		{"bad baseline", Options{Scenario: "s0020", Baseline: "a b"}, errors.ErrCodeInvalidScenario},
		{"bad mode", Options{Scenario: "s0020", Mode: "pie"}, errors.ErrCodeInvalidMode},
		{"bad width", Options{Scenario: "s0020", Width: -5}, errors.ErrCodeInvalidDimensions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.SetDefaults()
			err := opts.Validate()
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("Validate() code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestExecuteScenario(t *testing.T) {
	src := newFakeSource()
	r := newTestRunner(t, src)

	res, err := r.Execute(context.Background(), Options{Scenario: "s0020"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.Stats.Objectives != 3 || res.Stats.Marks != 3 {
		t.Errorf("stats = %+v, want 3 objectives and 3 marks", res.Stats)
	}
	if res.CacheInfo.DatasetHit || res.CacheInfo.LayoutHit {
		t.Errorf("first run should miss the cache, got %+v", res.CacheInfo)
	}
	if res.Layout.Mode != chart.ModeTiers || len(res.Layout.Categories) != 2 {
		t.Errorf("layout mode %s with %d categories, want tiers with 2", res.Layout.Mode, len(res.Layout.Categories))
	}

	again, err := r.Execute(context.Background(), Options{Scenario: "s0020"})
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}
	if !again.CacheInfo.DatasetHit || !again.CacheInfo.LayoutHit {
		t.Errorf("second run should hit the cache, got %+v", again.CacheInfo)
	}
	if src.calls["s0020"] != 1 {
		t.Errorf("source called %d times, want 1", src.calls["s0020"])
	}
	if again.Layout.ID == res.Layout.ID {
		t.Error("cached layout should get a fresh id")
	}
	if diff := cmp.Diff(res.Layout.Marks, again.Layout.Marks); diff != "" {
		t.Errorf("cached marks differ (-first +second):\n%s", diff)
	}
}

func TestExecuteRefreshBypassesCache(t *testing.T) {
	src := newFakeSource()
	r := newTestRunner(t, src)
	ctx := context.Background()

	if _, err := r.Execute(ctx, Options{Scenario: "s0020"}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Execute(ctx, Options{Scenario: "s0020", Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.DatasetHit || res.CacheInfo.LayoutHit {
		t.Errorf("refresh should not hit the cache, got %+v", res.CacheInfo)
	}
	if src.calls["s0020"] != 2 {
		t.Errorf("source called %d times, want 2", src.calls["s0020"])
	}
}

func TestExecuteComparison(t *testing.T) {
	src := newFakeSource()
	r := newTestRunner(t, src)

	res, err := r.Execute(context.Background(), Options{Scenario: "s0020", Baseline: "s0011"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.Dataset.BaselineScenario != "s0011" || !res.Layout.Comparison {
		t.Fatalf("expected comparison layout against s0011, got baseline %q comparison %v",
			res.Dataset.BaselineScenario, res.Layout.Comparison)
	}
	if src.calls["s0011"] != 1 {
		t.Errorf("baseline fetched %d times, want 1", src.calls["s0011"])
	}

	// Objective 1 moved from Tier 4 to Tier 2: one triangle plus one baseline mark.
	var moved []layout.Shape
	for _, m := range res.Layout.Marks {
		if m.ID.Objective == 1 {
			moved = append(moved, m.Shape)
		}
	}
	if len(moved) != 2 {
		t.Fatalf("objective 1 has %d marks, want 2", len(moved))
	}
	if res.Stats.Marks != 4 {
		t.Errorf("marks = %d, want 4", res.Stats.Marks)
	}
}

func TestExecuteModes(t *testing.T) {
	r := newTestRunner(t, newFakeSource())
	for _, mode := range chart.Modes {
		t.Run(string(mode), func(t *testing.T) {
			res, err := r.Execute(context.Background(), Options{Scenario: "s0020", Mode: string(mode)})
			if err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if res.Layout.Mode != mode {
				t.Errorf("mode = %s, want %s", res.Layout.Mode, mode)
			}
			if len(res.Layout.Marks) != 3 {
				t.Errorf("got %d marks, want 3", len(res.Layout.Marks))
			}
		})
	}
}

func TestExecuteInputFile(t *testing.T) {
	d := newFakeSource().datasets["s0020"]
	path := filepath.Join(t.TempDir(), "dataset.json")
	if err := chart.WriteDatasetFile(d, path); err != nil {
		t.Fatal(err)
	}

	r := newTestRunner(t, nil)
	res, err := r.Execute(context.Background(), Options{Input: path, Mode: "bar"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.CacheInfo.DatasetHit {
		t.Error("file datasets should not be cached")
	}
	if diff := cmp.Diff(d.Objectives, res.Dataset.Objectives); diff != "" {
		t.Errorf("objectives mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name string
		src  Source
		opts Options
		code errors.Code
	}{
		{"unknown scenario", newFakeSource(), Options{Scenario: "s9999"}, errors.ErrCodeScenarioNotFound},
		{"unknown baseline", newFakeSource(), Options{Scenario: "s0020", Baseline: "s9999"}, errors.ErrCodeScenarioNotFound},
		{"network", &fakeSource{err: fmt.Errorf("boom: %w", integrations.ErrNetwork), calls: map[string]int{}}, Options{Scenario: "s0020"}, errors.ErrCodeNetwork},
		{"no source", nil, Options{Scenario: "s0020"}, errors.ErrCodeUnsupported},
		{"missing file", nil, Options{Input: "/does/not/exist.json"}, errors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRunner(t, tt.src)
			_, err := r.Execute(context.Background(), tt.opts)
			if err == nil {
				t.Fatal("Execute() should fail")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestExecuteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := newFakeSource().datasets["s0020"]
	r := newTestRunner(t, nil)
	if _, err := r.ComputeLayout(ctx, d, Options{}); err != context.Canceled {
		t.Errorf("ComputeLayout() error = %v, want context.Canceled", err)
	}
}

func TestLayoutOptionsChangeCacheKey(t *testing.T) {
	d := newFakeSource().datasets["s0020"]
	r := newTestRunner(t, nil)
	ctx := context.Background()

	if _, hit, err := r.ComputeLayoutWithCacheInfo(ctx, d, Options{}); err != nil || hit {
		t.Fatalf("first layout: hit=%v err=%v", hit, err)
	}

	r.LayoutOptions = []layout.Option{layout.WithDotSize(8)}
	l, hit, err := r.ComputeLayoutWithCacheInfo(ctx, d, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("changed geometry should not reuse the cached layout")
	}
	if l.Marks[0].Width != 8 {
		t.Errorf("mark width = %v, want 8", l.Marks[0].Width)
	}
}

func TestAcquirePassesTiers(t *testing.T) {
	src := newFakeSource()
	r := newTestRunner(t, src)
	tiers := []string{"Good", "Fair", "Poor", "Bad"}
	if _, err := r.Acquire(context.Background(), Options{Scenario: "s0020", Tiers: tiers}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(tiers, src.lastTiers); diff != "" {
		t.Errorf("tiers mismatch (-want +got):\n%s", diff)
	}
}
