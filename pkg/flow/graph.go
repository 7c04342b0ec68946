package flow

import (
	"fmt"
	"iter"
	"slices"
)

// NodeData is the payload the arena stores for every live node. It is owned
// exclusively by the graph: callers may read the exported fields through
// [Graph.NodeData] but must not mutate them directly, or the structural
// invariants (children ordering, port counters) are no longer guaranteed.
type NodeData struct {
	// Op is the node's operation payload.
	Op Op
	// Parent is the containing node, or the zero Node for the root.
	Parent Node
	// Children are the node's region members in insertion order.
	Children []Node

	numInps int // highest connected incoming offset + 1
	numOuts int // highest connected outgoing offset + 1
}

// NumInPorts returns the node's dynamic incoming arity: the highest
// connected incoming offset observed so far, plus one.
func (d *NodeData) NumInPorts() int { return d.numInps }

// NumOutPorts returns the node's dynamic outgoing arity.
func (d *NodeData) NumOutPorts() int { return d.numOuts }

// nodeSlot is one arena slot. gen survives frees so recycled slots hand out
// fresh identities.
type nodeSlot struct {
	data nodeData
	live bool
	gen  uint32
}

// nodeData bundles the payload with the canonical identity for the slot.
type nodeData struct {
	NodeData
	node Node
}

// Graph is a hierarchical multigraph over an identity-stable node arena.
//
// The zero value is not usable - use [New] to create a graph with its root
// node, or [Load] to rebuild one from a storage-ordered node table. A Graph
// is not safe for concurrent use without external synchronization, and no
// mutation offers rollback: a caller that ignores a mid-sequence failure may
// be left with an inconsistent graph.
type Graph struct {
	root  Node
	slots []nodeSlot
	free  []int // freed slot indices, reused LIFO
	links linkTable
}

// New creates a graph containing a single root node carrying rootOp.
func New(rootOp Op) *Graph {
	g := &Graph{links: newLinkTable()}
	g.root = g.allocNode(rootOp, Node{}, -1)
	return g
}

// Root returns the graph's root node. The root is the only node without a
// parent.
func (g *Graph) Root() Node { return g.root }

// RootOp returns the operation payload of the root node, or nil if the root
// has been deleted.
func (g *Graph) RootOp() Op {
	s, err := g.slotOf(g.root)
	if err != nil {
		return nil
	}
	return s.data.Op
}

// slotOf resolves a node identity to its arena slot, validating liveness
// and generation.
func (g *Graph) slotOf(n Node) (*nodeSlot, error) {
	idx := n.Index()
	if idx < 0 || idx >= len(g.slots) {
		return nil, &NodeNotFoundError{Node: n}
	}
	s := &g.slots[idx]
	if !s.live || s.gen != n.gen {
		return nil, &NodeNotFoundError{Node: n}
	}
	return s, nil
}

// nodeAt returns the canonical identity stored at a live slot index.
func (g *Graph) nodeAt(idx int) Node { return g.slots[idx].data.node }

// allocNode allocates a slot (reusing a freed one if any), stores the
// payload, and appends the new node to parent's children when parent is
// valid. numOuts < 0 means the out-port count hint is unknown.
func (g *Graph) allocNode(op Op, parent Node, numOuts int) Node {
	var idx int
	if n := len(g.free); n > 0 {
		idx = g.free[n-1]
		g.free = g.free[:n-1]
	} else {
		idx = len(g.slots)
		g.slots = append(g.slots, nodeSlot{})
	}
	s := &g.slots[idx]
	s.gen++
	s.live = true

	outs := 0
	if numOuts >= 0 {
		outs = numOuts + 1
	}
	node := Node{id: idx + 1, gen: s.gen, outs: outs}
	s.data = nodeData{NodeData: NodeData{Op: op, Parent: parent}, node: node}

	if parent.IsValid() {
		ps := &g.slots[parent.Index()]
		ps.data.Children = append(ps.data.Children, node)
	}
	return node
}

// AddNode allocates a node carrying op and attaches it as the last child of
// parent. A zero parent attaches the node under the root. The out-port
// count of the new node is unknown; use [Graph.AddNodeWithOuts] to record a
// hint for bounds checks and range indexing.
//
// Fails with [ErrNodeNotFound] if parent is stale or never existed.
func (g *Graph) AddNode(op Op, parent Node) (Node, error) {
	return g.AddNodeWithOuts(op, parent, -1)
}

// AddNodeWithOuts is [Graph.AddNode] with an expected out-port count hint.
// The hint enables bounds-checked indexing ([Node.PortAt]) and open-ended
// ranges ([Node.OutPorts]); it is not an enforced arity. Pass a negative
// count to leave the hint unset.
func (g *Graph) AddNodeWithOuts(op Op, parent Node, numOuts int) (Node, error) {
	if !parent.IsValid() {
		parent = g.root
	}
	if _, err := g.slotOf(parent); err != nil {
		return Node{}, fmt.Errorf("add node: %w", err)
	}
	return g.allocNode(op, parent, numOuts), nil
}

// DeleteNode removes node from its parent's children, severs every incident
// link (incoming and outgoing, all sub-offsets, including order-only links
// addressed at offset -1), frees the slot for reuse, and returns the removed
// payload.
//
// Deletion does not cascade: the node's children are orphaned and keep a
// parent identity that now fails lookup. Orphans stay individually usable
// and deletable; they are reattached only by rebuilding or merging the
// graph. Fails with [ErrNodeNotFound] if node has already been deleted or
// never existed.
func (g *Graph) DeleteNode(node Node) (NodeData, error) {
	s, err := g.slotOf(node)
	if err != nil {
		return NodeData{}, fmt.Errorf("delete node: %w", err)
	}

	if parent := s.data.Parent; parent.IsValid() {
		// The parent may itself have been deleted already (this node is an
		// orphan); in that case there is no children list to fix up.
		if ps, err := g.slotOf(parent); err == nil {
			ps.data.Children = slices.DeleteFunc(ps.data.Children, func(c Node) bool {
				return c == node
			})
		}
	}

	g.links.severNode(node.Index())

	removed := s.data.NodeData
	s.data = nodeData{}
	s.live = false
	g.free = append(g.free, node.Index())
	return removed, nil
}

// NodeData returns the payload stored for node. The returned pointer refers
// to graph-owned data; treat it as read-only. Fails with [ErrNodeNotFound]
// if the slot is free, recycled, or out of range.
func (g *Graph) NodeData(n Node) (*NodeData, error) {
	s, err := g.slotOf(n)
	if err != nil {
		return nil, err
	}
	return &s.data.NodeData, nil
}

// Op returns the operation payload of node.
func (g *Graph) Op(n Node) (Op, error) {
	s, err := g.slotOf(n)
	if err != nil {
		return nil, err
	}
	return s.data.Op, nil
}

// Parent returns the parent of node. ok is false for the root.
func (g *Graph) Parent(n Node) (parent Node, ok bool, err error) {
	s, err := g.slotOf(n)
	if err != nil {
		return Node{}, false, err
	}
	return s.data.Parent, s.data.Parent.IsValid(), nil
}

// Children returns node's region members in insertion order. The returned
// slice is graph-owned; do not modify it.
func (g *Graph) Children(n Node) ([]Node, error) {
	s, err := g.slotOf(n)
	if err != nil {
		return nil, err
	}
	return s.data.Children, nil
}

// Contains reports whether n is a live node of this graph.
func (g *Graph) Contains(n Node) bool {
	_, err := g.slotOf(n)
	return err == nil
}

// NumNodes returns the number of live nodes.
func (g *Graph) NumNodes() int { return len(g.slots) - len(g.free) }

// Nodes returns all live nodes in storage (slot) order. The sequence is
// restartable; mutating the graph during iteration is undefined.
func (g *Graph) Nodes() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for i := range g.slots {
			if !g.slots[i].live {
				continue
			}
			if !yield(g.slots[i].data.node) {
				return
			}
		}
	}
}

// PortKind classifies port by delegating to the operation payload of its
// node.
func (g *Graph) PortKind(p Port) (Kind, error) {
	s, err := g.slotOf(p.Node)
	if err != nil {
		return 0, err
	}
	return s.data.Op.PortKind(p), nil
}

// PortType returns the value type flowing through port, or nil if the
// node's operation does not assign one.
func (g *Graph) PortType(p Port) (Type, error) {
	s, err := g.slotOf(p.Node)
	if err != nil {
		return nil, err
	}
	ty, ok := s.data.Op.PortType(p)
	if !ok {
		return nil, nil
	}
	return ty, nil
}

// RawNode describes one entry of a storage-ordered node table, as produced
// by the wire form: an operation payload plus the table position of the
// node's parent. An entry whose Parent equals its own position is the root.
type RawNode struct {
	Op     Op
	Parent int
}

// Load rebuilds a graph from a storage-ordered node table, preserving table
// positions as slot indices. Exactly the table's hierarchy is restored; the
// link table starts empty and is replayed separately by the caller.
//
// The root is the entry whose Parent equals its own position (the last such
// entry wins, and position 0 is assumed when none is marked), so parent
// self-references never persist as real edges in the hierarchy. Parent
// references may point forward in the table. Fails with [ErrEmptyGraph] for
// an empty table and [ErrNodeNotFound] for a parent position outside it.
func Load(nodes []RawNode) (*Graph, error) {
	if len(nodes) == 0 {
		return nil, ErrEmptyGraph
	}

	g := &Graph{links: newLinkTable(), slots: make([]nodeSlot, len(nodes))}
	for i, rn := range nodes {
		if rn.Parent < 0 || rn.Parent >= len(nodes) {
			return nil, fmt.Errorf("load node %d: parent %d: %w", i, rn.Parent, ErrNodeNotFound)
		}
		s := &g.slots[i]
		s.gen = 1
		s.live = true
		s.data = nodeData{
			NodeData: NodeData{Op: rn.Op},
			node:     Node{id: i + 1, gen: 1},
		}
	}

	g.root = g.nodeAt(0)
	for i, rn := range nodes {
		if rn.Parent == i {
			g.root = g.nodeAt(i)
			continue
		}
		g.slots[i].data.Parent = g.nodeAt(rn.Parent)
	}
	for i := range nodes {
		if parent := g.slots[i].data.Parent; parent.IsValid() {
			ps := &g.slots[parent.Index()]
			ps.data.Children = append(ps.data.Children, g.nodeAt(i))
		}
	}
	return g, nil
}
