package layout

import "slices"

// TierPositions places every objective as a fixed-size square inside the
// cell formed by its tier (row band) and category (column band).
//
// Dots fill each cell row-major, left to right and top to bottom. With
// showComparison set, a cell holds the objectives currently in its tier,
// ordered improved first, unchanged next and worsened last, followed by a
// baseline mark for each objective that left the tier since the baseline.
// Objectives whose tier or category is not listed get no mark.
func TierPositions(objectives []Objective, categories, tiers []string, width, height float64, showComparison bool, opts ...Option) []Position {
	cfg := newConfig(opts)
	gridWidth, gridHeight := cfg.Margin.PlotSize(width, height)

	g := grid{
		cfg:     cfg,
		bands:   make(map[string]CategoryLayout, len(categories)),
		tierIdx: make(map[string]int, len(tiers)),
	}
	for _, band := range CategoryWidths(objectives, categories, gridWidth, WithConfig(cfg)) {
		g.bands[band.Category] = band
	}
	for i, t := range tiers {
		if _, ok := g.tierIdx[t]; !ok {
			g.tierIdx[t] = i
		}
	}
	if len(tiers) > 0 {
		g.rowHeight = gridHeight / float64(len(tiers))
	}

	cells := groupCells(objectives)
	var positions []Position
	for tierIndex, tier := range tiers {
		for _, cat := range categories {
			c := g.cell(tierIndex, cat)
			if showComparison {
				positions = g.placeComparison(positions, c, tier, cells.byCategory[cat])
			} else {
				positions = g.placePlain(positions, c, cells.byCell[cellKey{tier, cat}])
			}
		}
	}

	cfg.Logger.Debug("tier positions",
		"objectives", len(objectives),
		"marks", len(positions),
		"comparison", showComparison)
	return positions
}

type cellKey struct{ tier, category string }

type cellGroups struct {
	byCell     map[cellKey][]Objective
	byCategory map[string][]Objective
}

// groupCells buckets objectives by cell and by category, preserving input
// order inside every bucket.
func groupCells(objectives []Objective) cellGroups {
	g := cellGroups{
		byCell:     make(map[cellKey][]Objective),
		byCategory: make(map[string][]Objective),
	}
	for _, o := range objectives {
		k := cellKey{o.Tier, o.Category}
		g.byCell[k] = append(g.byCell[k], o)
		g.byCategory[o.Category] = append(g.byCategory[o.Category], o)
	}
	return g
}

type grid struct {
	cfg       Config
	bands     map[string]CategoryLayout
	tierIdx   map[string]int
	rowHeight float64
}

// cell is the packing frame of one (tier, category) pair.
type cell struct {
	originX, originY float64
	perRow           int
}

func (g grid) cell(tierIndex int, category string) cell {
	band := g.bands[category]
	return cell{
		originX: g.cfg.Margin.Left + band.StartX,
		originY: g.cfg.Margin.Top + float64(tierIndex)*g.rowHeight,
		perRow:  g.cfg.DotsPerRow(band.Width),
	}
}

// slot returns the top-left corner of the dot at packing index i.
func (g grid) slot(c cell, i int) (float64, float64) {
	row, col := i/c.perRow, i%c.perRow
	spacing, dot := g.cfg.Spacing(), g.cfg.DotSize
	cx := c.originX + float64(col)*spacing + dot
	cy := c.originY + float64(row)*spacing + dot
	return cx - dot/2, cy - dot/2
}

func (g grid) mark(c cell, i int, id PositionID, o Objective, shape Shape) Position {
	x, y := g.slot(c, i)
	return Position{
		ID:        id,
		X:         x,
		Y:         y,
		Width:     g.cfg.DotSize,
		Height:    g.cfg.DotSize,
		Objective: o,
		Shape:     shape,
	}
}

func (g grid) placePlain(dst []Position, c cell, objs []Objective) []Position {
	for i, o := range objs {
		dst = append(dst, g.mark(c, i, PrimaryID(o.ID), o, ShapeRect))
	}
	return dst
}

func (g grid) placeComparison(dst []Position, c cell, tier string, categoryObjs []Objective) []Position {
	var current, movedAway []Objective
	for _, o := range categoryObjs {
		switch {
		case o.Tier == tier:
			current = append(current, o)
		case o.Baseline() == tier:
			movedAway = append(movedAway, o)
		}
	}

	slices.SortStableFunc(current, func(a, b Objective) int {
		return g.direction(a) - g.direction(b)
	})

	i := 0
	for _, o := range current {
		dst = append(dst, g.mark(c, i, PrimaryID(o.ID), o, g.shape(o)))
		i++
	}
	for _, o := range movedAway {
		dst = append(dst, g.mark(c, i, BaselineID(o.ID), o, ShapeBaselineRect))
		i++
	}
	return dst
}

// index mirrors a list lookup: unknown tiers rank as -1.
func (g grid) index(tier string) int {
	if i, ok := g.tierIdx[tier]; ok {
		return i
	}
	return -1
}

// direction is -1 when the objective moved to an earlier tier, +1 when it
// moved to a later one and 0 otherwise.
func (g grid) direction(o Objective) int {
	cur, base := g.index(o.Tier), g.index(o.Baseline())
	switch {
	case cur < base:
		return -1
	case cur > base:
		return 1
	}
	return 0
}

func (g grid) shape(o Objective) Shape {
	switch g.direction(o) {
	case -1:
		return ShapeTriangleUp
	case 1:
		return ShapeTriangleDown
	}
	return ShapeRect
}
