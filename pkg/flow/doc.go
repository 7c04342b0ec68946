// Package flow implements a hierarchical, multigraph intermediate
// representation for dataflow programs.
//
// A [Graph] stores nodes in an arena with slot recycling, nests them in a
// parent/child hierarchy (a node's children form its structural sub-region),
// and connects them with directed edges addressed by port position. Multiple
// parallel edges between the same two ports are supported and their creation
// order is preserved.
//
// # Identity
//
// A [Node] is an opaque identity referencing an arena slot. Deleting a node
// frees its slot for reuse; every slot carries a generation counter that is
// bumped on reuse, so a stale identity held across a delete/add cycle fails
// with [ErrNodeNotFound] instead of silently aliasing the new occupant.
//
// # Ports
//
// A [Port] is a (node, offset, direction) triple. Offset -1 is a reserved
// convention meaning "the next/last order-only port": it is stored literally
// in the link table and resolved to a concrete offset only when queried via
// [Graph.ConstrainOffset], based on the node's current connected-port count.
//
// # Scope
//
// The package maintains structural invariants only. It does not type-check
// programs, does not validate that a graph is a well-formed program, and
// offers no transactional rollback for partially applied mutations. Graphs
// are not safe for concurrent use without external synchronization.
package flow
