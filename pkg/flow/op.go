package flow

import "encoding/json"

// Kind classifies what flows through a port.
type Kind int

const (
	// KindValue marks a port carrying a runtime dataflow value.
	KindValue Kind = iota
	// KindConst marks a port carrying a static constant.
	KindConst
	// KindFunction marks a port carrying a static function reference.
	KindFunction
	// KindOrder marks an order-only port expressing sequencing without data.
	KindOrder
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindConst:
		return "const"
	case KindFunction:
		return "function"
	default:
		return "order"
	}
}

// Type is an opaque value type assigned to dataflow ports by the operation
// layer. The graph engine never inspects types; it only carries them.
type Type interface {
	// TypeName returns a stable textual name for the type.
	TypeName() string
}

// Op is the operation payload attached to every node. Concrete operation
// catalogs live outside the graph engine; the engine requires only that a
// payload can classify its ports and serialize itself.
//
// Serialize receives the node's own identity and its parent's identity
// (the root receives itself as parent) together with the graph, so payloads
// that embed structural information can resolve it. The returned message is
// stored opaquely in the wire form.
type Op interface {
	// Name reports the operation kind, e.g. "Module" or "DFG".
	Name() string

	// Serialize renders the payload for the wire form.
	Serialize(node, parent Node, g *Graph) (json.RawMessage, error)

	// PortKind classifies the given port on a node carrying this payload.
	PortKind(p Port) Kind

	// PortType returns the value type flowing through the port. The second
	// result is false for operations that do not participate in dataflow
	// typing, or for ports outside the operation's typed signature.
	PortType(p Port) (Type, bool)
}
