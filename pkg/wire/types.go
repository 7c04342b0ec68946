// Package wire implements the versioned, array-indexed serialization of
// flow graphs.
//
// The wire form is the canonical interchange format for graphs: a
// JSON-serializable structure with a version tag, a dense node array, and an
// ordered edge array. It is designed for round-trip fidelity: encode -> decode
// reproduces the hierarchy shape, the operation payloads, and the multiset of
// links per port, although dense array indices may differ from the source
// graph's internal slot indices.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Version is the current wire format version tag.
const Version = "v1"

// ErrVersion is returned by [Decode] when the version tag of the input is
// not a supported format version.
var ErrVersion = errors.New("unsupported wire format version")

// Graph is the wire form of a flow graph.
//
// Element i of Nodes describes the node with dense index i. The unique
// element whose Parent equals its own index is the root. Edges reference
// nodes by dense index; either offset of an edge may be null to denote a
// structurally present but disconnected port reference, which is skipped on
// reload.
type Graph struct {
	Version string `json:"version"`
	Nodes   []Node `json:"nodes"`
	Edges   []Edge `json:"edges"`
}

// Node is one element of the wire node array: an opaque serialized
// operation payload plus the dense index of the node's parent (its own
// index for the root).
type Node struct {
	Op     json.RawMessage `json:"op"`
	Parent int             `json:"parent"`
}

// PortRef addresses one end of a wire edge: a dense node index and a port
// offset. A nil Offset marks a placeholder for a statically-unconnected
// port. On the wire a PortRef is a two-element array, e.g. [1, 0] or
// [1, null].
type PortRef struct {
	Node   int
	Offset *int
}

// Ref returns a PortRef with a concrete offset.
func Ref(node, offset int) PortRef {
	return PortRef{Node: node, Offset: &offset}
}

// MarshalJSON encodes the reference as [node, offset].
func (r PortRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{r.Node, r.Offset})
}

// UnmarshalJSON decodes a [node, offset] pair; offset may be null.
func (r *PortRef) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("port reference must have 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &r.Node); err != nil {
		return fmt.Errorf("port reference node: %w", err)
	}
	if err := json.Unmarshal(pair[1], &r.Offset); err != nil {
		return fmt.Errorf("port reference offset: %w", err)
	}
	return nil
}

// Edge is one element of the wire edge array: a source (outgoing) and
// destination (incoming) port reference. On the wire an Edge is the pair
// [[src_node, src_offset], [dst_node, dst_offset]].
type Edge struct {
	Src PortRef
	Dst PortRef
}

// MarshalJSON encodes the edge as a pair of port references.
func (e Edge) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]PortRef{e.Src, e.Dst})
}

// UnmarshalJSON decodes a pair of port references.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var pair []PortRef
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("edge must have 2 port references, got %d", len(pair))
	}
	e.Src, e.Dst = pair[0], pair[1]
	return nil
}
