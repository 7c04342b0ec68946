package wire_test

import (
	"fmt"

	"github.com/flowgraphs/flowir/pkg/flow"
	"github.com/flowgraphs/flowir/pkg/ops"
	"github.com/flowgraphs/flowir/pkg/wire"
)

// Example round-trips a graph through its wire form.
func Example() {
	g := flow.New(ops.Module{})
	a, _ := g.AddNode(ops.Noop{Ty: ops.Val("bit")}, g.Root())
	b, _ := g.AddNode(ops.Noop{Ty: ops.Val("bit")}, g.Root())
	_ = g.AddLink(a.Out(0), b.Inp(0))

	data, _ := wire.Marshal(g)
	back, _ := wire.Unmarshal(data, ops.Decode)

	fmt.Println(back.NumNodes(), "nodes,", back.NumLinks(), "links")
	// Output: 3 nodes, 1 links
}
