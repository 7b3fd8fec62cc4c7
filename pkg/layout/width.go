package layout

// CategoryWidths splits gridWidth into one horizontal band per category,
// in category order, with no gaps between bands.
//
// With the proportional strategy each category starts from a share of the
// grid proportional to its objective count. Shares below the minimum
// category width are pinned to the minimum, and whatever is left is
// redistributed among the remaining categories in proportion to their
// counts. When every category is pinned the bands may extend past
// gridWidth.
func CategoryWidths(objectives []Objective, categories []string, gridWidth float64, opts ...Option) []CategoryLayout {
	cfg := newConfig(opts)
	var widths map[string]float64
	if cfg.Widths == WidthEqual {
		widths = equalWidths(categories, gridWidth)
	} else {
		widths = proportionalWidths(objectives, categories, gridWidth, cfg)
	}

	layouts := make([]CategoryLayout, 0, len(categories))
	var x float64
	for _, cat := range categories {
		w := widths[cat]
		layouts = append(layouts, CategoryLayout{Category: cat, Width: w, StartX: x})
		x += w
	}
	return layouts
}

func equalWidths(categories []string, gridWidth float64) map[string]float64 {
	widths := make(map[string]float64, len(categories))
	if len(categories) == 0 {
		return widths
	}
	unit := gridWidth / float64(len(categories))
	for _, cat := range categories {
		widths[cat] = unit
	}
	return widths
}

func proportionalWidths(objectives []Objective, categories []string, gridWidth float64, cfg Config) map[string]float64 {
	counts := countByCategory(objectives)
	total := len(objectives)
	minWidth := cfg.MinCategoryWidth

	widths := make(map[string]float64, len(categories))
	var above []string
	var reserved float64
	for _, cat := range categories {
		var share float64
		if total > 0 {
			share = gridWidth * float64(counts[cat]) / float64(total)
		}
		if share < minWidth {
			widths[cat] = minWidth
			reserved += minWidth
			continue
		}
		above = append(above, cat)
	}

	remaining := gridWidth - reserved
	if len(above) > 0 && remaining > 0 {
		var aboveCount int
		for _, cat := range above {
			aboveCount += counts[cat]
		}
		for _, cat := range above {
			if aboveCount == 0 {
				widths[cat] = minWidth
				continue
			}
			widths[cat] = remaining * float64(counts[cat]) / float64(aboveCount)
		}
	} else {
		// Nothing left to share; above-minimum categories fall back to the floor.
		for _, cat := range above {
			widths[cat] = minWidth
		}
	}

	cfg.Logger.Debug("category widths",
		"categories", len(categories),
		"pinned", len(categories)-len(above),
		"remaining", remaining)
	return widths
}

func countByCategory(objectives []Objective) map[string]int {
	counts := make(map[string]int)
	for _, o := range objectives {
		counts[o.Category]++
	}
	return counts
}
