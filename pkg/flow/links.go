package flow

import (
	"fmt"
	"iter"
	"slices"
)

// subPort addresses one of possibly several parallel edges at a port.
// Offsets may be negative (the order-port convention); they are stored
// literally and resolved only at query time.
type subPort struct {
	node   int // arena slot index
	offset int
	sub    int
}

// linkEntry records one link in creation order. src is always an outgoing
// sub-port, dst an incoming one.
type linkEntry struct {
	src, dst subPort
}

// linkTable is the bidirectional edge multimap. The forward and backward
// maps are exact mirrors of each other; the order slice preserves link
// insertion order for deterministic serialization and merge replay. All
// three are updated together on every insert and delete.
type linkTable struct {
	fwd   map[subPort]subPort // outgoing sub-port -> incoming sub-port
	bck   map[subPort]subPort // incoming sub-port -> outgoing sub-port
	order []linkEntry
}

func newLinkTable() linkTable {
	return linkTable{
		fwd: make(map[subPort]subPort),
		bck: make(map[subPort]subPort),
	}
}

// unusedSub returns the first sub-offset not yet used for the port in m,
// probing linearly from 0.
func unusedSub(m map[subPort]subPort, p subPort) subPort {
	for {
		if _, ok := m[p]; !ok {
			return p
		}
		p.sub++
	}
}

// insert records the pair in both maps and the order slice.
func (t *linkTable) insert(src, dst subPort) {
	t.fwd[src] = dst
	t.bck[dst] = src
	t.order = append(t.order, linkEntry{src: src, dst: dst})
}

// remove deletes the pair from both maps and the order slice.
func (t *linkTable) remove(src, dst subPort) {
	delete(t.fwd, src)
	delete(t.bck, dst)
	t.order = slices.DeleteFunc(t.order, func(e linkEntry) bool {
		return e.src == src && e.dst == dst
	})
}

// severNode removes every link incident to the slot index, across all
// offsets (including negative order-port offsets) and all sub-offsets.
func (t *linkTable) severNode(idx int) {
	t.order = slices.DeleteFunc(t.order, func(e linkEntry) bool {
		if e.src.node != idx && e.dst.node != idx {
			return false
		}
		delete(t.fwd, e.src)
		delete(t.bck, e.dst)
		return true
	})
}

// AddLink creates exactly one link from the outgoing port src to the
// incoming port dst. The first unused sub-offset is chosen independently on
// each side by linear probing from 0, so calling AddLink twice with the same
// ports creates two parallel links distinguished by sub-offset. The
// endpoints' dynamic arities are raised to cover the connected offsets.
//
// Fails with [ErrPortDirection] on misdirected ports and [ErrNodeNotFound]
// on a stale endpoint node.
func (g *Graph) AddLink(src, dst Port) error {
	if src.Direction != Outgoing {
		return fmt.Errorf("add link: source %v: %w", src, ErrPortDirection)
	}
	if dst.Direction != Incoming {
		return fmt.Errorf("add link: destination %v: %w", dst, ErrPortDirection)
	}
	ss, err := g.slotOf(src.Node)
	if err != nil {
		return fmt.Errorf("add link: %w", err)
	}
	ds, err := g.slotOf(dst.Node)
	if err != nil {
		return fmt.Errorf("add link: %w", err)
	}

	s := unusedSub(g.links.fwd, subPort{node: src.Node.Index(), offset: src.Offset})
	d := unusedSub(g.links.bck, subPort{node: dst.Node.Index(), offset: dst.Offset})
	g.links.insert(s, d)

	if src.Offset+1 > ss.data.numOuts {
		ss.data.numOuts = src.Offset + 1
	}
	if dst.Offset+1 > ds.data.numInps {
		ds.data.numInps = dst.Offset + 1
	}
	return nil
}

// DeleteLink removes one link between src and dst: the linked ports of src
// are scanned in ascending sub-offset order and the first pair matching dst
// is deleted from both maps. A missing link is a normal outcome, not an
// error; the call is then a no-op.
//
// Fails with [ErrPortDirection] on misdirected ports and [ErrNodeNotFound]
// on a stale src node.
func (g *Graph) DeleteLink(src, dst Port) error {
	if src.Direction != Outgoing {
		return fmt.Errorf("delete link: source %v: %w", src, ErrPortDirection)
	}
	if dst.Direction != Incoming {
		return fmt.Errorf("delete link: destination %v: %w", dst, ErrPortDirection)
	}
	if _, err := g.slotOf(src.Node); err != nil {
		return fmt.Errorf("delete link: %w", err)
	}

	key := subPort{node: src.Node.Index(), offset: src.Offset}
	for {
		d, ok := g.links.fwd[key]
		if !ok {
			return nil
		}
		if d.node == dst.Node.Index() && d.offset == dst.Offset {
			g.links.remove(key, d)
			return nil
		}
		key.sub++
	}
}

// LinkedPorts returns the ports linked to port, in ascending sub-offset
// order (link-creation order for that port). The sequence is finite,
// restartable, and a pure function of the current link table.
func (g *Graph) LinkedPorts(port Port) (iter.Seq[Port], error) {
	if _, err := g.slotOf(port.Node); err != nil {
		return nil, fmt.Errorf("linked ports: %w", err)
	}
	return g.linkedPorts(port), nil
}

// linkedPorts is LinkedPorts without the liveness check, for internal
// callers that already validated the node.
func (g *Graph) linkedPorts(port Port) iter.Seq[Port] {
	m := g.links.fwd
	opp := Incoming
	if port.Direction == Incoming {
		m = g.links.bck
		opp = Outgoing
	}
	return func(yield func(Port) bool) {
		key := subPort{node: port.Node.Index(), offset: port.Offset}
		for {
			o, ok := m[key]
			if !ok {
				return
			}
			if !yield(g.nodeAt(o.node).Port(o.offset, opp)) {
				return
			}
			key.sub++
		}
	}
}

// NodeLinks enumerates the full adjacency of node in the given direction
// without guessing offsets: it yields (port, linked opposite ports) for
// every offset 0..arity-1, where arity is the node's dynamic port count in
// that direction. Offsets with no links yield an empty slice.
func (g *Graph) NodeLinks(n Node, d Direction) (iter.Seq2[Port, []Port], error) {
	s, err := g.slotOf(n)
	if err != nil {
		return nil, fmt.Errorf("node links: %w", err)
	}
	arity := s.data.numInps
	if d == Outgoing {
		arity = s.data.numOuts
	}
	node := s.data.node
	return func(yield func(Port, []Port) bool) {
		for offset := 0; offset < arity; offset++ {
			port := node.Port(offset, d)
			if !yield(port, slices.Collect(g.linkedPorts(port))) {
				return
			}
		}
	}, nil
}

// OutgoingLinks is [Graph.NodeLinks] in the outgoing direction.
func (g *Graph) OutgoingLinks(n Node) (iter.Seq2[Port, []Port], error) {
	return g.NodeLinks(n, Outgoing)
}

// IncomingLinks is [Graph.NodeLinks] in the incoming direction.
func (g *Graph) IncomingLinks(n Node) (iter.Seq2[Port, []Port], error) {
	return g.NodeLinks(n, Incoming)
}

// NumIncoming returns the number of distinct incoming port positions known
// for node, counting each connected position once regardless of parallel
// sub-edges.
func (g *Graph) NumIncoming(n Node) (int, error) {
	s, err := g.slotOf(n)
	if err != nil {
		return 0, err
	}
	return s.data.numInps, nil
}

// NumOutgoing returns the number of distinct outgoing port positions known
// for node.
func (g *Graph) NumOutgoing(n Node) (int, error) {
	s, err := g.slotOf(n)
	if err != nil {
		return 0, err
	}
	return s.data.numOuts, nil
}

// OrderSuccessors returns the nodes linked from node's outgoing order port
// (offset -1). Order links express sequencing without data flow.
func (g *Graph) OrderSuccessors(n Node) (iter.Seq[Node], error) {
	ports, err := g.LinkedPorts(n.Out(-1))
	if err != nil {
		return nil, err
	}
	return portNodes(ports), nil
}

// OrderPredecessors returns the nodes linked to node's incoming order port.
func (g *Graph) OrderPredecessors(n Node) (iter.Seq[Node], error) {
	ports, err := g.LinkedPorts(n.Inp(-1))
	if err != nil {
		return nil, err
	}
	return portNodes(ports), nil
}

func portNodes(ports iter.Seq[Port]) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for p := range ports {
			if !yield(p.Node) {
				return
			}
		}
	}
}

// ConstrainOffset resolves port's offset to a concrete non-negative value.
// Non-negative offsets are returned unchanged. A negative offset addresses
// a position relative to the end of the node's connected ports in that
// direction: -1 is the next/last order-only position, computed from the
// current connected-port count. The result is recomputed on every call; it
// changes as links are added and removed.
func (g *Graph) ConstrainOffset(p Port) (int, error) {
	if p.Offset >= 0 {
		return p.Offset, nil
	}
	var current int
	var err error
	if p.Direction == Incoming {
		current, err = g.NumIncoming(p.Node)
	} else {
		current, err = g.NumOutgoing(p.Node)
	}
	if err != nil {
		return 0, fmt.Errorf("constrain offset: %w", err)
	}
	return current + p.Offset + 1, nil
}

// NumLinks returns the total number of links in the graph, counting each
// parallel sub-edge separately.
func (g *Graph) NumLinks() int { return len(g.links.order) }

// Links returns every link as a (source, destination) port pair in
// insertion order. Offsets are reported as stored: order-only links keep
// their negative offsets (resolve them with [Graph.ConstrainOffset]).
func (g *Graph) Links() iter.Seq2[Port, Port] {
	return func(yield func(Port, Port) bool) {
		for _, e := range g.links.order {
			src := g.nodeAt(e.src.node).Out(e.src.offset)
			dst := g.nodeAt(e.dst.node).Inp(e.dst.offset)
			if !yield(src, dst) {
				return
			}
		}
	}
}
