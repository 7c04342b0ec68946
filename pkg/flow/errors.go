package flow

import (
	"errors"
	"fmt"
)

var (
	// ErrNodeNotFound is returned when a node identity refers to a slot that
	// is free, out of range, or has been recycled since the identity was
	// obtained. Match it with errors.Is; the concrete error is usually a
	// [NodeNotFoundError] carrying the offending identity.
	ErrNodeNotFound = errors.New("node not found")

	// ErrParentBeforeChild is returned by [Graph.InsertGraph] when the source
	// graph's storage order lists a node before its parent. Merging requires
	// every parent to appear before its children; the merge does not perform
	// a topological pre-pass.
	ErrParentBeforeChild = errors.New("parent must be stored before its children")

	// ErrUnresolvableRange is returned by [Node.OutPorts] when the node's
	// expected out-port count is unknown, so an open-ended port range cannot
	// be resolved.
	ErrUnresolvableRange = errors.New("expected out-port count unknown")

	// ErrEmptyGraph is returned by [Load] when the node table is empty.
	// A graph must contain at least a root node.
	ErrEmptyGraph = errors.New("graph must contain at least one node")

	// ErrPortDirection is returned by [Graph.AddLink] and [Graph.DeleteLink]
	// when the source port is not Outgoing or the destination port is not
	// Incoming.
	ErrPortDirection = errors.New("wrong port direction")

	// ErrOffsetOutOfRange is returned by [Node.PortAt] when the offset is
	// negative or exceeds the node's expected out-port count.
	ErrOffsetOutOfRange = errors.New("port offset out of range")
)

// NodeNotFoundError reports a lookup of a dead or never-allocated node.
// It matches [ErrNodeNotFound] under errors.Is.
type NodeNotFoundError struct {
	Node Node
}

// Error implements the error interface.
func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("node %v not found", e.Node)
}

// Is reports whether target is [ErrNodeNotFound].
func (e *NodeNotFoundError) Is(target error) bool {
	return target == ErrNodeNotFound
}
