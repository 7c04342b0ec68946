package render

import (
	"strings"
	"testing"

	"github.com/flowgraphs/flowir/pkg/flow"
	"github.com/flowgraphs/flowir/pkg/ops"
)

func buildRegion(t *testing.T) (*flow.Graph, flow.Node, flow.Node) {
	t.Helper()
	g := flow.New(ops.Module{})
	sig := ops.Sig(ops.Vals("qubit"), ops.Vals("qubit"))
	fn, err := g.AddNode(ops.DFG{Sig: sig}, g.Root())
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	in, err := g.AddNodeWithOuts(ops.Input{Types: sig.Input}, fn, 1)
	if err != nil {
		t.Fatalf("AddNodeWithOuts: %v", err)
	}
	out, err := g.AddNode(ops.Output{Types: sig.Output}, fn)
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := g.AddLink(in.Out(0), out.Inp(0)); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	return g, in, out
}

func TestToDOTHierarchy(t *testing.T) {
	g, _, _ := buildRegion(t)
	dot := ToDOT(g, Options{})

	for _, want := range []string{
		"digraph G {",
		"subgraph cluster_n0 {", // the module root contains the region
		"subgraph cluster_n1 {", // the region contains its body
		`label="Module"`,
		`label="DFG"`,
		`n2 [label="Input"]`,
		`n3 [label="Output"]`,
		`n2 -> n3 [taillabel="0", headlabel="0"]`,
	} {
		if !strings.Contains(dot, want) {
			t.Fatalf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTOrderEdgesDashed(t *testing.T) {
	g := flow.New(ops.Module{})
	a, _ := g.AddNode(ops.Noop{Ty: ops.Val("bit")}, g.Root())
	b, _ := g.AddNode(ops.Noop{Ty: ops.Val("bit")}, g.Root())
	if err := g.AddLink(a.Out(-1), b.Inp(-1)); err != nil {
		t.Fatalf("AddLink: %v", err)
	}

	dot := ToDOT(g, Options{})
	if !strings.Contains(dot, "n1 -> n2 [style=dashed];") {
		t.Fatalf("DOT missing dashed order edge:\n%s", dot)
	}
	if strings.Contains(dot, "taillabel") {
		t.Fatalf("order edge carries port labels:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	g, in, _ := buildRegion(t)
	dot := ToDOT(g, Options{Detailed: true})
	if !strings.Contains(dot, "Input\\n"+in.String()) {
		t.Fatalf("detailed DOT missing node identity:\n%s", dot)
	}
}

func TestToDOTParallelEdges(t *testing.T) {
	g := flow.New(ops.Module{})
	a, _ := g.AddNode(ops.Custom{OpName: "dup", Sig: ops.Sig(nil, ops.Vals("bit"))}, g.Root())
	b, _ := g.AddNode(ops.Custom{OpName: "join", Sig: ops.Sig(ops.Vals("bit"), nil)}, g.Root())
	_ = g.AddLink(a.Out(0), b.Inp(0))
	_ = g.AddLink(a.Out(0), b.Inp(0))

	dot := ToDOT(g, Options{})
	if got := strings.Count(dot, "n1 -> n2"); got != 2 {
		t.Fatalf("DOT has %d parallel edges, want 2:\n%s", got, dot)
	}
}
