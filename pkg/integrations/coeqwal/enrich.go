package coeqwal

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/tierviz/pkg/layout"
)

// Placeholder returns the stand-in water volume and unmet demand for the
// objective at index. Volumes fall in [10, 1000]; demand is 10–80% of the
// volume. The values depend only on index, so repeated fetches agree.
func Placeholder(index int) (waterVolume, unmetDemand float64) {
	pr := float64((index*9301+49297)%233280) / 233280
	waterVolume = math.Floor(float64(pr*991)) + 10

	pr2 := float64((index*7919+31337)%233280) / 233280
	share := 0.1 + float64(pr2*0.7)
	unmetDemand = math.Floor(float64(waterVolume * share))
	return waterVolume, unmetDemand
}

// Enrich numbers objectives by position and fills in placeholder values.
// It modifies and returns objs.
func Enrich(objs []layout.Objective) []layout.Objective {
	for i := range objs {
		objs[i].ID = i
		objs[i].WaterVolume, objs[i].UnmetDemand = Placeholder(i)
	}
	return objs
}

type unitKey struct {
	category string
	index    int
}

// ApplyBaseline returns a copy of current where each objective's
// BaselineTier is the tier of the baseline objective with the same
// category and within-category index. Objectives without a counterpart
// keep their own tier as baseline.
func ApplyBaseline(current, baseline []layout.Objective) []layout.Objective {
	tiers := make(map[unitKey]string, len(baseline))
	for _, b := range baseline {
		k := unitKey{b.Category, b.WithinCategoryIndex}
		if _, ok := tiers[k]; !ok {
			tiers[k] = b.Tier
		}
	}

	out := make([]layout.Objective, len(current))
	for i, o := range current {
		if t, ok := tiers[unitKey{o.Category, o.WithinCategoryIndex}]; ok {
			o.BaselineTier = t
		} else {
			o.BaselineTier = o.Tier
		}
		out[i] = o
	}
	return out
}

// MeanTier averages the tier numbers of "Tier N" labels and clamps the
// result to [1, 4]. Labels without a number are skipped. Returns 0 when
// no objective has a numbered tier.
func MeanTier(objs []layout.Objective) float64 {
	var sum float64
	var n int
	for _, o := range objs {
		v, ok := TierNumber(o.Tier)
		if !ok {
			continue
		}
		sum += float64(v)
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Max(1, math.Min(4, sum/float64(n)))
}

// TierNumber extracts N from "Tier N".
func TierNumber(label string) (int, bool) {
	s := strings.TrimSpace(strings.TrimPrefix(label, "Tier "))
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[end] == '-' || s[end] == '+')) {
		end++
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return v, true
}
