package chart

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/tierviz/pkg/errors"
	"github.com/matzehuels/tierviz/pkg/layout"
)

// Mode selects one of the three layouts.
type Mode string

const (
	ModeTiers   Mode = "tiers"
	ModeTreemap Mode = "treemap"
	ModeBar     Mode = "bar"
)

// Modes lists the valid modes in display order.
var Modes = []Mode{ModeTiers, ModeTreemap, ModeBar}

// ParseMode validates s. The empty string selects ModeTiers.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeTiers, nil
	case ModeTiers, ModeTreemap, ModeBar:
		return Mode(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidMode, "unknown mode %q (want tiers, treemap or bar)", s)
}

// Layout is a computed chart: the marks plus the inputs that produced them.
//
// Categories is populated for ModeTiers only; Tiers is carried for every
// mode so renderers can draw a legend.
type Layout struct {
	ID               string                  `json:"id" bson:"_id"`
	Mode             Mode                    `json:"mode" bson:"mode"`
	Scenario         string                  `json:"scenario,omitempty" bson:"scenario,omitempty"`
	BaselineScenario string                  `json:"baselineScenario,omitempty" bson:"baseline_scenario,omitempty"`
	Width            float64                 `json:"width" bson:"width"`
	Height           float64                 `json:"height" bson:"height"`
	Margin           layout.Margin           `json:"margin" bson:"margin"`
	Comparison       bool                    `json:"comparison,omitempty" bson:"comparison,omitempty"`
	Tiers            []string                `json:"tiers,omitempty" bson:"tiers,omitempty"`
	Legend           []TierColor             `json:"legend,omitempty" bson:"legend,omitempty"`
	Categories       []layout.CategoryLayout `json:"categories,omitempty" bson:"categories,omitempty"`
	Marks            []layout.Position       `json:"marks" bson:"marks"`
	DatasetHash      string                  `json:"datasetHash,omitempty" bson:"dataset_hash,omitempty"`
	CreatedAt        time.Time               `json:"createdAt" bson:"created_at"`
}

// Compute runs the layout selected by mode over d. Category bands are
// reported for the tiers layout.
func Compute(mode Mode, d Dataset, width, height float64, comparison bool, opts ...layout.Option) Layout {
	cfg := layout.DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	l := Layout{
		ID:               uuid.NewString(),
		Mode:             mode,
		Scenario:         d.Scenario,
		BaselineScenario: d.BaselineScenario,
		Width:            width,
		Height:           height,
		Margin:           cfg.Margin,
		Comparison:       comparison && mode == ModeTiers,
		Tiers:            d.Tiers,
		Legend:           Palette(d.Tiers),
		DatasetHash:      d.Hash(),
		CreatedAt:        time.Now().UTC(),
	}

	switch mode {
	case ModeTreemap:
		l.Marks = layout.TreemapPositions(d.Objectives, width, height, opts...)
	case ModeBar:
		l.Marks = layout.BarPositions(d.Objectives, width, height, opts...)
	default:
		gridWidth, _ := cfg.Margin.PlotSize(width, height)
		l.Categories = layout.CategoryWidths(d.Objectives, d.Categories, gridWidth, opts...)
		l.Marks = layout.TierPositions(d.Objectives, d.Categories, d.Tiers, width, height, l.Comparison, opts...)
	}
	if l.Marks == nil {
		l.Marks = []layout.Position{}
	}
	return l
}

// MarshalLayout encodes l as indented JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout decodes a Layout and checks its mode.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	mode, err := ParseMode(string(l.Mode))
	if err != nil {
		return Layout{}, err
	}
	l.Mode = mode
	return l, nil
}

// WriteLayoutFile writes l to path as JSON.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
