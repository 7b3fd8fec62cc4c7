package chart

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/tierviz/pkg/cache"
	"github.com/matzehuels/tierviz/pkg/errors"
	"github.com/matzehuels/tierviz/pkg/layout"
)

// Dataset is everything a layout needs besides the canvas size.
type Dataset struct {
	Scenario         string             `json:"scenario,omitempty" yaml:"scenario,omitempty" bson:"scenario,omitempty"`
	BaselineScenario string             `json:"baselineScenario,omitempty" yaml:"baselineScenario,omitempty" bson:"baseline_scenario,omitempty"`
	Categories       []string           `json:"categories" yaml:"categories" bson:"categories"`
	Tiers            []string           `json:"tiers" yaml:"tiers" bson:"tiers"`
	Objectives       []layout.Objective `json:"objectives" yaml:"objectives" bson:"objectives"`
}

// Empty reports whether there is nothing to lay out.
func (d Dataset) Empty() bool { return len(d.Objectives) == 0 }

// Comparison reports whether the objectives carry baseline tiers.
func (d Dataset) Comparison() bool { return d.BaselineScenario != "" }

// Hash returns a content hash used as the cache key of derived layouts.
func (d Dataset) Hash() string {
	data, _ := json.Marshal(d)
	return cache.Hash(data)
}

// Validate checks the invariants the layouts rely on: unique objective
// ids and no duplicate category or tier labels.
func (d Dataset) Validate() error {
	if dup, ok := firstDuplicate(d.Categories); ok {
		return errors.New(errors.ErrCodeInvalidDataset, "duplicate category %q", dup)
	}
	if dup, ok := firstDuplicate(d.Tiers); ok {
		return errors.New(errors.ErrCodeInvalidDataset, "duplicate tier %q", dup)
	}
	seen := make(map[int]bool, len(d.Objectives))
	for _, o := range d.Objectives {
		if seen[o.ID] {
			return errors.New(errors.ErrCodeInvalidDataset, "duplicate objective id %d", o.ID)
		}
		seen[o.ID] = true
	}
	return nil
}

// Summary counts objectives per tier and per category, in list order.
// Objectives with labels outside the lists are counted under Unplaced.
type Summary struct {
	PerTier     []LabelCount `json:"perTier"`
	PerCategory []LabelCount `json:"perCategory"`
	Moved       int          `json:"moved"`
	Unplaced    int          `json:"unplaced"`
}

// LabelCount pairs a label with a count.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summarize computes a Summary.
func (d Dataset) Summarize() Summary {
	tiers := make(map[string]int)
	cats := make(map[string]int)
	var s Summary
	for _, o := range d.Objectives {
		tiers[o.Tier]++
		cats[o.Category]++
		if o.Moved() {
			s.Moved++
		}
		if !slices.Contains(d.Tiers, o.Tier) || !slices.Contains(d.Categories, o.Category) {
			s.Unplaced++
		}
	}
	for _, t := range d.Tiers {
		s.PerTier = append(s.PerTier, LabelCount{t, tiers[t]})
	}
	for _, c := range d.Categories {
		s.PerCategory = append(s.PerCategory, LabelCount{c, cats[c]})
	}
	return s
}

// ReadDatasetFile reads a Dataset from a JSON file, or from YAML when
// the path ends in .yaml or .yml.
func ReadDatasetFile(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read %s: %w", path, err)
	}
	var d Dataset
	if isYAML(path) {
		err = yaml.Unmarshal(data, &d)
	} else {
		err = json.Unmarshal(data, &d)
	}
	if err != nil {
		return Dataset{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "parse %s", path)
	}
	if err := d.Validate(); err != nil {
		return Dataset{}, err
	}
	return d, nil
}

// WriteDatasetFile writes d as indented JSON, or YAML for .yaml/.yml
// paths.
func WriteDatasetFile(d Dataset, path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(d)
	} else {
		data, err = json.MarshalIndent(d, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func firstDuplicate(labels []string) (string, bool) {
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if seen[l] {
			return l, true
		}
		seen[l] = true
	}
	return "", false
}
