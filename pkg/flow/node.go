package flow

import (
	"fmt"
	"iter"
)

// Direction distinguishes the two sides of a node's port space.
type Direction int

const (
	// Incoming ports receive values (or ordering constraints) from links.
	Incoming Direction = iota
	// Outgoing ports produce values (or ordering constraints) for links.
	Outgoing
)

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == Incoming {
		return Outgoing
	}
	return Incoming
}

// String returns "incoming" or "outgoing".
func (d Direction) String() string {
	if d == Incoming {
		return "incoming"
	}
	return "outgoing"
}

// Node is an opaque, recyclable identity referencing a slot in a graph's
// node arena. The zero Node is invalid and never refers to a live node.
//
// Node values are comparable with ==. All identities handed out by a graph
// for the same live node are identical, so a Node can be used directly as a
// map key. A Node obtained before the node was deleted compares unequal to
// any identity for a later occupant of the same slot.
type Node struct {
	id   int    // arena slot index + 1; 0 marks the invalid zero Node
	gen  uint32 // slot generation at allocation time
	outs int    // expected out-port count hint + 1; 0 when unknown
}

// Index returns the arena slot index of the node.
// Calling Index on an invalid Node returns -1.
func (n Node) Index() int { return n.id - 1 }

// IsValid reports whether the node is a real identity (obtained from a
// graph) rather than the zero value.
func (n Node) IsValid() bool { return n.id != 0 }

// NumOutPorts returns the node's expected out-port count hint, if one was
// declared at allocation time. The hint is used only for bounds checks and
// range resolution; it is not an enforced arity.
func (n Node) NumOutPorts() (int, bool) {
	if n.outs == 0 {
		return 0, false
	}
	return n.outs - 1, true
}

// String returns a short textual form such as "N3".
func (n Node) String() string {
	if !n.IsValid() {
		return "N(invalid)"
	}
	return fmt.Sprintf("N%d", n.Index())
}

// Inp returns the incoming port at offset. Offset -1 addresses the node's
// next/last order-only incoming port (see [Graph.ConstrainOffset]).
func (n Node) Inp(offset int) Port {
	return Port{Node: n, Offset: offset, Direction: Incoming}
}

// Out returns the outgoing port at offset. Offset -1 addresses the node's
// next/last order-only outgoing port.
func (n Node) Out(offset int) Port {
	return Port{Node: n, Offset: offset, Direction: Outgoing}
}

// Port returns the port at offset in the given direction.
func (n Node) Port(offset int, d Direction) Port {
	return Port{Node: n, Offset: offset, Direction: d}
}

// PortAt returns the outgoing port at offset, bounds-checked against the
// node's expected out-port count when that hint is known. Negative offsets
// are rejected; use [Node.Out] for the -1 order-port convention.
func (n Node) PortAt(offset int) (Port, error) {
	if offset < 0 {
		return Port{}, fmt.Errorf("offset %d: %w", offset, ErrOffsetOutOfRange)
	}
	if outs, ok := n.NumOutPorts(); ok && offset >= outs {
		return Port{}, fmt.Errorf("offset %d of %d: %w", offset, outs, ErrOffsetOutOfRange)
	}
	return n.Out(offset), nil
}

// OutRange returns a lazy sequence of outgoing ports over [start, stop).
// The sequence is restartable.
func (n Node) OutRange(start, stop int) iter.Seq[Port] {
	return func(yield func(Port) bool) {
		for i := start; i < stop; i++ {
			if !yield(n.Out(i)) {
				return
			}
		}
	}
}

// OutPorts returns a lazy sequence over all outgoing ports 0..count-1, where
// count is the node's expected out-port count hint. It fails with
// [ErrUnresolvableRange] if the hint is unknown, since the open-ended range
// cannot be resolved.
func (n Node) OutPorts() (iter.Seq[Port], error) {
	outs, ok := n.NumOutPorts()
	if !ok {
		return nil, fmt.Errorf("node %v: %w", n, ErrUnresolvableRange)
	}
	return n.OutRange(0, outs), nil
}

// Outs returns a lazy sequence of outgoing ports at the given explicit
// offsets, in argument order.
func (n Node) Outs(offsets ...int) iter.Seq[Port] {
	return func(yield func(Port) bool) {
		for _, i := range offsets {
			if !yield(n.Out(i)) {
				return
			}
		}
	}
}

// Port identifies a directed connection point on a node.
//
// Ports are pure values: constructing one performs no graph mutation or
// validation. Two ports are equal iff their node, offset, and direction all
// match. A negative offset is resolved against the node's live connection
// counts only when the port is used in a query or serialized.
type Port struct {
	Node      Node
	Offset    int
	Direction Direction
}

// String returns a short textual form such as "N1.out[0]".
func (p Port) String() string {
	d := "inp"
	if p.Direction == Outgoing {
		d = "out"
	}
	return fmt.Sprintf("%v.%s[%d]", p.Node, d, p.Offset)
}
