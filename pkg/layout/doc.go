// Package layout computes the geometry of the tier visualizations.
//
// Every function in this package is a pure function of its arguments: it
// takes a list of [Objective] values plus the canvas size and returns one
// [Position] per mark. Nothing is drawn here; renderers consume the
// positions.
//
// # Layouts
//
//   - [TierPositions]: unit/dot grid with one row band per tier and one
//     column band per category. With comparison enabled, marks show the
//     direction each objective moved relative to a baseline scenario.
//   - [TreemapPositions]: squarified treemap of objectives grouped by
//     category and weighted by water volume.
//   - [BarPositions]: bar chart of unmet demand, highest on the right.
//
// [CategoryWidths] is the column-band allocator used by [TierPositions].
// It is exported so axis renderers can place category labels.
//
// # Configuration
//
// Geometry constants (margins, dot size, minimum category width, padding)
// live in [Config]. Each function starts from [DefaultConfig] and applies
// the given [Option] values:
//
//	positions := layout.TierPositions(objs, categories, tiers, 1200, 800, false,
//	    layout.WithMargin(layout.Margin{Top: 20, Right: 20, Bottom: 40, Left: 60}))
//
// # Degenerate input
//
// Layout functions never fail. Empty input produces no positions, a
// zero maximum demand produces zero-height bars, and categories whose
// proportional share falls below the minimum width are pinned to it even
// when that overflows the grid.
package layout
