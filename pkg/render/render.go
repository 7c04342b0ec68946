// Package render visualizes flow graphs as Graphviz diagrams.
//
// The hierarchy is drawn with nested clusters: a node with children becomes
// a labelled cluster containing its body, a leaf stays a plain box. Value
// links are solid edges labelled with their port offsets; order links are
// dashed and unlabelled.
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no external graphviz installation is needed.
package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/flowgraphs/flowir/pkg/flow"
)

// Options configures diagram rendering.
type Options struct {
	// Detailed includes node identities in labels. When false, only the
	// operation name is shown.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT format. The resulting DOT string
// can be rendered with [SVG].
func ToDOT(g *flow.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	writeNode(&buf, g, g.Root(), opts, "  ")

	buf.WriteString("\n")
	for src, dst := range g.Links() {
		so, err := g.ConstrainOffset(src)
		if err != nil {
			continue
		}
		do, err := g.ConstrainOffset(dst)
		if err != nil {
			continue
		}
		if isOrder(g, src) || isOrder(g, dst) {
			fmt.Fprintf(&buf, "  %s -> %s [style=dashed];\n", dotID(src.Node), dotID(dst.Node))
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s [taillabel=\"%d\", headlabel=\"%d\"];\n",
			dotID(src.Node), dotID(dst.Node), so, do)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// writeNode emits one node, recursing into a cluster when it has children.
func writeNode(buf *bytes.Buffer, g *flow.Graph, n flow.Node, opts Options, indent string) {
	label := nodeLabel(g, n, opts)
	children, err := g.Children(n)
	if err != nil {
		return
	}

	if len(children) == 0 {
		fmt.Fprintf(buf, "%s%s [label=%q];\n", indent, dotID(n), label)
		return
	}

	fmt.Fprintf(buf, "%ssubgraph cluster_%s {\n", indent, dotID(n))
	fmt.Fprintf(buf, "%s  label=%q;\n", indent, label)
	// Anchor for edges that target the container itself.
	fmt.Fprintf(buf, "%s  %s [label=%q, style=\"rounded,filled,dashed\", fillcolor=lightgrey];\n",
		indent, dotID(n), label)
	for _, c := range children {
		writeNode(buf, g, c, opts, indent+"  ")
	}
	fmt.Fprintf(buf, "%s}\n", indent)
}

func nodeLabel(g *flow.Graph, n flow.Node, opts Options) string {
	name := "?"
	if op, err := g.Op(n); err == nil {
		name = op.Name()
	}
	if !opts.Detailed {
		return name
	}
	return fmt.Sprintf("%s\n%v", name, n)
}

func dotID(n flow.Node) string {
	return fmt.Sprintf("n%d", n.Index())
}

func isOrder(g *flow.Graph, p flow.Port) bool {
	kind, err := g.PortKind(p)
	return err == nil && kind == flow.KindOrder
}

// SVG renders a DOT graph to SVG using Graphviz.
func SVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// GraphSVG is a convenience wrapper rendering a graph straight to SVG.
func GraphSVG(g *flow.Graph, opts Options) ([]byte, error) {
	return SVG(ToDOT(g, opts))
}
