package layout

import (
	"cmp"
	"math"
	"slices"
)

// BarPositions draws one bar per objective. Objectives are sorted by
// ascending unmet demand and placed back to front, so slot 0 (at the
// left margin) holds the highest demand. Bar heights are scaled so the
// largest demand spans the full plot height; bars share a baseline at the
// bottom of the plot area.
//
// Padding between bars is 10% of the slot pitch, capped at 2 units. It
// narrows the drawn bar but not the pitch.
func BarPositions(objectives []Objective, width, height float64, opts ...Option) []Position {
	cfg := newConfig(opts)
	if len(objectives) == 0 {
		return nil
	}
	plotWidth, plotHeight := cfg.Margin.PlotSize(width, height)

	sorted := slices.Clone(objectives)
	slices.SortStableFunc(sorted, func(a, b Objective) int {
		return cmp.Compare(a.UnmetDemand, b.UnmetDemand)
	})

	pitch := plotWidth / float64(len(sorted))
	padding := math.Min(cfg.BarPaddingMax, pitch*cfg.BarPaddingRatio)
	scale := maxDemand(objectives)

	positions := make([]Position, 0, len(sorted))
	for i, o := range sorted {
		xIndex := len(sorted) - 1 - i
		h := o.UnmetDemand / scale * plotHeight
		positions = append(positions, Position{
			ID:        PrimaryID(o.ID),
			X:         cfg.Margin.Left + float64(xIndex)*pitch + padding/2,
			Y:         cfg.Margin.Top + plotHeight - h,
			Width:     pitch - padding,
			Height:    h,
			Objective: o,
			Shape:     ShapeRect,
		})
	}

	cfg.Logger.Debug("bar positions", "bars", len(positions), "max_demand", scale)
	return positions
}

// maxDemand returns the largest unmet demand, or 1 when that is zero so
// callers can divide by it.
func maxDemand(objectives []Objective) float64 {
	m := math.NaN()
	for _, o := range objectives {
		if math.IsNaN(o.UnmetDemand) {
			continue
		}
		if math.IsNaN(m) || o.UnmetDemand > m {
			m = o.UnmetDemand
		}
	}
	if math.IsNaN(m) || m == 0 {
		return 1
	}
	return m
}
