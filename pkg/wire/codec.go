package wire

import (
	"encoding/json"
	"fmt"

	"github.com/flowgraphs/flowir/pkg/flow"
)

// Encode converts a live graph to its wire form.
//
// Live nodes are visited in slot order and re-numbered to a dense,
// contiguous 0..N-1 index space (positions in the emitted array, unrelated
// to internal slot indices). Each node's operation payload is serialized
// with its own identity and its parent's identity; the root is emitted with
// its own dense index as its parent. Every link is emitted in insertion
// order with negative offsets resolved through [flow.Graph.ConstrainOffset].
func Encode(g *flow.Graph) (*Graph, error) {
	dense := make(map[int]int, g.NumNodes())
	for n := range g.Nodes() {
		dense[n.Index()] = len(dense)
	}

	out := &Graph{
		Version: Version,
		Nodes:   make([]Node, 0, len(dense)),
		Edges:   make([]Edge, 0, g.NumLinks()),
	}

	for n := range g.Nodes() {
		data, err := g.NodeData(n)
		if err != nil {
			return nil, fmt.Errorf("encode: %w", err)
		}
		parent := n // root marker: self-reference
		if data.Parent.IsValid() {
			parent = data.Parent
		}
		raw, err := data.Op.Serialize(n, parent, g)
		if err != nil {
			return nil, fmt.Errorf("encode node %v: %w", n, err)
		}
		out.Nodes = append(out.Nodes, Node{Op: raw, Parent: dense[parent.Index()]})
	}

	for src, dst := range g.Links() {
		so, err := g.ConstrainOffset(src)
		if err != nil {
			return nil, fmt.Errorf("encode edge %v: %w", src, err)
		}
		do, err := g.ConstrainOffset(dst)
		if err != nil {
			return nil, fmt.Errorf("encode edge %v: %w", dst, err)
		}
		out.Edges = append(out.Edges, Edge{
			Src: Ref(dense[src.Node.Index()], so),
			Dst: Ref(dense[dst.Node.Index()], do),
		})
	}
	return out, nil
}

// OpDecoder reconstructs an operation payload from its opaque wire form.
// The operation catalog supplies one; see the ops package.
type OpDecoder func(raw json.RawMessage) (flow.Op, error)

// Decode rebuilds a live graph from its wire form.
//
// The input must carry a supported version tag and at least one node
// ([flow.ErrEmptyGraph] otherwise). Nodes are materialized per array
// position with the hierarchy the parent indices describe; the entry whose
// parent equals its own position is the root. Edges are then replayed in
// array order through [flow.Graph.AddLink]; an edge with a null offset on
// either end is a placeholder for a statically-unconnected port and is
// skipped.
func Decode(wg *Graph, dec OpDecoder) (*flow.Graph, error) {
	if wg.Version != Version {
		return nil, fmt.Errorf("decode: %q: %w", wg.Version, ErrVersion)
	}
	if len(wg.Nodes) == 0 {
		return nil, fmt.Errorf("decode: %w", flow.ErrEmptyGraph)
	}

	raw := make([]flow.RawNode, len(wg.Nodes))
	for i, wn := range wg.Nodes {
		op, err := dec(wn.Op)
		if err != nil {
			return nil, fmt.Errorf("decode node %d: %w", i, err)
		}
		raw[i] = flow.RawNode{Op: op, Parent: wn.Parent}
	}
	g, err := flow.Load(raw)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	nodes := make([]flow.Node, 0, len(raw))
	for n := range g.Nodes() {
		nodes = append(nodes, n)
	}
	for i, e := range wg.Edges {
		if e.Src.Offset == nil || e.Dst.Offset == nil {
			continue // statically-unconnected port placeholder
		}
		if e.Src.Node < 0 || e.Src.Node >= len(nodes) || e.Dst.Node < 0 || e.Dst.Node >= len(nodes) {
			return nil, fmt.Errorf("decode edge %d: node index out of range: %w", i, flow.ErrNodeNotFound)
		}
		src := nodes[e.Src.Node].Out(*e.Src.Offset)
		dst := nodes[e.Dst.Node].Inp(*e.Dst.Offset)
		if err := g.AddLink(src, dst); err != nil {
			return nil, fmt.Errorf("decode edge %d: %w", i, err)
		}
	}
	return g, nil
}
