// Package pipeline turns a scenario or dataset file into a computed layout.
//
// The pipeline has two stages:
//
//  1. Acquire: load a dataset from a JSON file or fetch it from a
//     scenario [Source], optionally merging a baseline scenario for
//     comparison views
//  2. Layout: compute marks for the requested [chart.Mode]
//
// Both stages are cached through a [cache.Cache]. The CLI and the API
// server share one [Runner] implementation.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, client, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Scenario: "s0020",
//	    Baseline: "s0011",
//	    Mode:     "tiers",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(len(result.Layout.Marks))
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tierviz/pkg/cache"
	"github.com/matzehuels/tierviz/pkg/chart"
	"github.com/matzehuels/tierviz/pkg/errors"
)

const (
	// DefaultWidth is the default canvas width.
	DefaultWidth = 1200.0

	// DefaultHeight is the default canvas height.
	DefaultHeight = 800.0

	// DefaultTTL is how long acquired datasets and layouts stay cached.
	DefaultTTL = 24 * time.Hour
)

// DefaultTiers are the tier labels of the COEQWAL outcome scale.
var DefaultTiers = []string{"Tier 1", "Tier 2", "Tier 3", "Tier 4"}

// Options configures one pipeline run. The struct doubles as the API
// request body.
type Options struct {
	// Acquire options. Exactly one of Scenario and Input is required.
	Scenario string   `json:"scenario,omitempty"`
	Input    string   `json:"-"`
	Baseline string   `json:"baseline,omitempty"`
	Tiers    []string `json:"tiers,omitempty"`
	Refresh  bool     `json:"refresh,omitempty"`

	// Layout options
	Mode   string  `json:"mode,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Dataset   chart.Dataset
	Layout    chart.Layout
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains timing and size information.
type Stats struct {
	Objectives  int
	Categories  int
	Marks       int
	AcquireTime time.Duration
	LayoutTime  time.Duration
}

// CacheInfo tracks which stages hit the cache.
type CacheInfo struct {
	DatasetHit bool
	LayoutHit  bool
}

// SetDefaults fills in zero values. It is idempotent.
func (o *Options) SetDefaults() {
	if o.Mode == "" {
		o.Mode = string(chart.ModeTiers)
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if len(o.Tiers) == 0 {
		o.Tiers = slices.Clone(DefaultTiers)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks the options after SetDefaults. Errors carry
// [errors.Code]s so the API can map them to statuses.
func (o *Options) Validate() error {
	if err := o.ValidateForAcquire(); err != nil {
		return err
	}
	return o.ValidateForLayout()
}

// ValidateForAcquire checks the dataset source settings.
func (o *Options) ValidateForAcquire() error {
	switch {
	case o.Scenario == "" && o.Input == "":
		return errors.New(errors.ErrCodeInvalidInput, "scenario or input file is required")
	case o.Scenario != "" && o.Input != "":
		return errors.New(errors.ErrCodeInvalidInput, "scenario and input file are mutually exclusive")
	}
	if o.Scenario != "" {
		if err := errors.ValidateScenarioID(o.Scenario); err != nil {
			return err
		}
	}
	if o.Baseline != "" {
		if err := errors.ValidateScenarioID(o.Baseline); err != nil {
			return err
		}
	}
	return nil
}

// ValidateForLayout checks mode and canvas size.
func (o *Options) ValidateForLayout() error {
	if _, err := chart.ParseMode(o.Mode); err != nil {
		return err
	}
	return errors.ValidateDimensions(o.Width, o.Height)
}

// Comparison reports whether a baseline scenario was requested.
func (o *Options) Comparison() bool { return o.Baseline != "" }

// DatasetKeyOpts returns cache key options for the acquire stage.
func (o *Options) DatasetKeyOpts() cache.DatasetKeyOpts {
	return cache.DatasetKeyOpts{Baseline: o.Baseline, Tiers: o.Tiers}
}
