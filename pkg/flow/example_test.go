package flow_test

import (
	"fmt"

	"github.com/flowgraphs/flowir/pkg/flow"
	"github.com/flowgraphs/flowir/pkg/ops"
)

// Example builds a module containing one dataflow region that passes two
// qubit values straight through.
func Example() {
	g := flow.New(ops.Module{})

	sig := ops.Sig(ops.Vals("qubit", "qubit"), ops.Vals("qubit", "qubit"))
	fn, _ := g.AddNode(ops.DFG{Sig: sig}, g.Root())
	in, _ := g.AddNodeWithOuts(ops.Input{Types: sig.Input}, fn, 2)
	out, _ := g.AddNode(ops.Output{Types: sig.Output}, fn)

	_ = g.AddLink(in.Out(0), out.Inp(0))
	_ = g.AddLink(in.Out(1), out.Inp(1))

	seq, _ := g.LinkedPorts(in.Out(0))
	for p := range seq {
		fmt.Println(p)
	}
	fmt.Println(g.NumNodes(), "nodes,", g.NumLinks(), "links")
	// Output:
	// N3.inp[0]
	// 4 nodes, 2 links
}

// ExampleGraph_AddLink shows that linking the same ports twice creates two
// parallel edges, kept in creation order.
func ExampleGraph_AddLink() {
	g := flow.New(ops.Module{})
	a, _ := g.AddNode(ops.Custom{OpName: "dup", Sig: ops.Sig(nil, ops.Vals("bit"))}, g.Root())
	b, _ := g.AddNode(ops.Custom{OpName: "join", Sig: ops.Sig(ops.Vals("bit", "bit"), nil)}, g.Root())

	_ = g.AddLink(a.Out(0), b.Inp(0))
	_ = g.AddLink(a.Out(0), b.Inp(0))

	fmt.Println(g.NumLinks())
	// Output: 2
}
