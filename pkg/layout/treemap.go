package layout

import "math"

// phi is the target aspect ratio of squarified rows.
var phi = (1 + math.Sqrt(5)) / 2

// TreemapPositions lays objectives out as a two-level treemap: one block
// per category, subdivided into one rectangle per objective whose area is
// proportional to its water volume. The treemap fills the plot area inside
// the margins.
func TreemapPositions(objectives []Objective, width, height float64, opts ...Option) []Position {
	cfg := newConfig(opts)
	plotWidth, plotHeight := cfg.Margin.PlotSize(width, height)

	root := BuildHierarchy(objectives)
	Squarify(root, plotWidth, plotHeight, cfg.TreemapPadding, cfg.TreemapRound)

	leaves := root.Leaves()
	positions := make([]Position, 0, len(leaves))
	for _, leaf := range leaves {
		positions = append(positions, Position{
			ID:        PrimaryID(leaf.Objective.ID),
			X:         leaf.X0 + cfg.Margin.Left,
			Y:         leaf.Y0 + cfg.Margin.Top,
			Width:     leaf.Width(),
			Height:    leaf.Height(),
			Objective: *leaf.Objective,
			Shape:     ShapeRect,
		})
	}

	cfg.Logger.Debug("treemap positions",
		"categories", len(root.Children),
		"leaves", len(positions),
		"total", root.Value)
	return positions
}

// Squarify assigns a rectangle to every node of root inside a width ×
// height area. Children are packed into rows whose aspect ratio stays as
// close to the golden ratio as possible. padding separates siblings from
// each other and from their parent's edge; round snaps every coordinate to
// whole units.
func Squarify(root *Node, width, height, padding float64, round bool) {
	root.X0, root.Y0, root.X1, root.Y1 = 0, 0, width, height
	position(root, 0, padding)
	if round {
		root.Walk(func(n *Node) {
			n.X0, n.Y0 = math.Round(n.X0), math.Round(n.Y0)
			n.X1, n.Y1 = math.Round(n.X1), math.Round(n.Y1)
		})
	}
}

// position shrinks n by the inset handed down from its parent, then tiles
// its children inside the remaining area.
func position(n *Node, inset, padding float64) {
	x0, y0, x1, y1 := n.X0+inset, n.Y0+inset, n.X1-inset, n.Y1-inset
	x0, x1 = collapse(x0, x1)
	y0, y1 = collapse(y0, y1)
	n.X0, n.Y0, n.X1, n.Y1 = x0, y0, x1, y1

	if n.IsLeaf() {
		return
	}
	half := padding / 2
	x0, y0 = x0+padding-half, y0+padding-half
	x1, y1 = x1-(padding-half), y1-(padding-half)
	x0, x1 = collapse(x0, x1)
	y0, y1 = collapse(y0, y1)
	squarify(n, x0, y0, x1, y1)
	for _, c := range n.Children {
		position(c, half, padding)
	}
}

// collapse turns an inverted interval into a zero-length one at its midpoint.
func collapse(lo, hi float64) (float64, float64) {
	if hi < lo {
		mid := (lo + hi) / 2
		return mid, mid
	}
	return lo, hi
}

func squarify(parent *Node, x0, y0, x1, y1 float64) {
	nodes := parent.Children
	n := len(nodes)
	value := parent.Value

	for i0, i1 := 0, 0; i0 < n; i0 = i1 {
		dx, dy := x1-x0, y1-y0

		// Start the row with the next non-empty node.
		var sum float64
		for {
			sum = nodes[i1].Value
			i1++
			if sum != 0 || i1 >= n {
				break
			}
		}
		minValue, maxValue := sum, sum
		alpha := math.Max(dy/dx, dx/dy) / (value * phi)
		beta := sum * sum * alpha
		minRatio := math.Max(maxValue/beta, beta/minValue)

		// Grow the row while its worst aspect ratio does not get worse.
		for ; i1 < n; i1++ {
			v := nodes[i1].Value
			sum += v
			minValue = math.Min(minValue, v)
			maxValue = math.Max(maxValue, v)
			beta = sum * sum * alpha
			ratio := math.Max(maxValue/beta, beta/minValue)
			if ratio > minRatio {
				sum -= v
				break
			}
			minRatio = ratio
		}

		row := nodes[i0:i1]
		if dx < dy {
			top, bottom := y0, y1
			if value != 0 {
				y0 += dy * sum / value
				bottom = y0
			}
			dice(row, sum, x0, top, x1, bottom)
		} else {
			left, right := x0, x1
			if value != 0 {
				x0 += dx * sum / value
				right = x0
			}
			slice(row, sum, left, y0, right, y1)
		}
		value -= sum
	}
}

// dice lays nodes out left to right across the full height of the area.
func dice(nodes []*Node, total, x0, y0, x1, y1 float64) {
	var k float64
	if total != 0 {
		k = (x1 - x0) / total
	}
	for _, n := range nodes {
		n.Y0, n.Y1 = y0, y1
		n.X0 = x0
		x0 += n.Value * k
		n.X1 = x0
	}
}

// slice lays nodes out top to bottom across the full width of the area.
func slice(nodes []*Node, total, x0, y0, x1, y1 float64) {
	var k float64
	if total != 0 {
		k = (y1 - y0) / total
	}
	for _, n := range nodes {
		n.X0, n.X1 = x0, x1
		n.Y0 = y0
		y0 += n.Value * k
		n.Y1 = y0
	}
}
