package layout

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT returns a Graphviz DOT representation of the hierarchy rooted at n.
//
// Category nodes are drawn as boxes labeled with their summed weight, leaves
// as rounded boxes labeled with the objective id and weight. Useful for
// checking the ordering the treemap will use.
func (n *Node) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph Hierarchy {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, style=filled, fillcolor=white];\n")
	buf.WriteString("  edge [arrowhead=none];\n\n")

	writeDOTNode(&buf, n, 0)

	buf.WriteString("}\n")
	return buf.String()
}

func writeDOTNode(buf *bytes.Buffer, n *Node, id int) int {
	nodeID := fmt.Sprintf("n%d", id)
	next := id + 1

	switch n.Kind {
	case KindLeaf:
		fmt.Fprintf(buf, "  %s [label=%q, shape=box, style=\"filled,rounded\"];\n", nodeID, fmt.Sprintf("#%s\n%g", n.Name, n.Value))
		return next
	case KindCategory:
		fmt.Fprintf(buf, "  %s [label=%q, shape=box];\n", nodeID, fmt.Sprintf("%s\n%g", n.Name, n.Value))
	default:
		fmt.Fprintf(buf, "  %s [label=%q, shape=ellipse];\n", nodeID, fmt.Sprintf("%s\n%g", n.Name, n.Value))
	}
	for _, c := range n.Children {
		fmt.Fprintf(buf, "  %s -> n%d;\n", nodeID, next)
		next = writeDOTNode(buf, c, next)
	}
	return next
}

// RenderHierarchySVG renders the hierarchy as an SVG document via Graphviz.
func RenderHierarchySVG(ctx context.Context, root *Node) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(root.ToDOT()))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
