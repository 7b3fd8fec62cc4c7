package layout

import (
	"cmp"
	"slices"
	"strconv"
)

// NodeKind tags the level of a hierarchy node.
type NodeKind int

const (
	KindRoot NodeKind = iota
	KindCategory
	KindLeaf
)

func (k NodeKind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindCategory:
		return "category"
	case KindLeaf:
		return "leaf"
	}
	return "unknown"
}

// Node is an element of the weighted tree partitioned by the treemap.
// Value is the leaf's own weight, or the sum of its descendants' weights
// for inner nodes. X0/Y0/X1/Y1 hold the rectangle assigned by [Squarify].
type Node struct {
	Kind      NodeKind
	Name      string
	Value     float64
	Objective *Objective
	Children  []*Node
	Depth     int

	X0, Y0, X1, Y1 float64
}

// Width returns the horizontal span of the node's rectangle.
func (n *Node) Width() float64 { return n.X1 - n.X0 }

// Height returns the vertical span of the node's rectangle.
func (n *Node) Height() float64 { return n.Y1 - n.Y0 }

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// BuildHierarchy groups objectives into root → category → objective.
// Categories appear in first-seen order before sorting; each leaf is
// weighted by the objective's water volume. Sums are computed bottom-up
// and siblings at every level are stably sorted by descending value.
func BuildHierarchy(objectives []Objective) *Node {
	root := &Node{Kind: KindRoot, Name: "root"}
	byName := make(map[string]*Node)
	for i := range objectives {
		o := objectives[i]
		cat, ok := byName[o.Category]
		if !ok {
			cat = &Node{Kind: KindCategory, Name: o.Category, Depth: 1}
			byName[o.Category] = cat
			root.Children = append(root.Children, cat)
		}
		cat.Children = append(cat.Children, &Node{
			Kind:      KindLeaf,
			Name:      strconv.Itoa(o.ID),
			Value:     o.WaterVolume,
			Objective: &o,
			Depth:     2,
		})
	}
	root.sum()
	root.sortByValue()
	return root
}

func (n *Node) sum() float64 {
	if n.IsLeaf() {
		return n.Value
	}
	var total float64
	for _, c := range n.Children {
		total += c.sum()
	}
	n.Value = total
	return total
}

func (n *Node) sortByValue() {
	slices.SortStableFunc(n.Children, func(a, b *Node) int {
		return cmp.Compare(b.Value, a.Value)
	})
	for _, c := range n.Children {
		c.sortByValue()
	}
}

// Leaves returns the leaf nodes in pre-order.
func (n *Node) Leaves() []*Node {
	var leaves []*Node
	n.Walk(func(node *Node) {
		if node.IsLeaf() && node.Kind == KindLeaf {
			leaves = append(leaves, node)
		}
	})
	return leaves
}

// Walk visits n and its descendants in pre-order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
