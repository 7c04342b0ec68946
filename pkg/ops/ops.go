// Package ops provides a minimal operation catalog for flow graphs.
//
// The graph engine treats operation payloads as opaque capabilities; this
// package supplies concrete payloads for the structural building blocks
// (Module, Input, Output, DFG, Noop, Custom) together with [Decode], the
// wire-form decoder for the catalog. It performs no type-checking: port
// types are carried, never validated.
package ops

import (
	"encoding/json"
	"fmt"

	"github.com/flowgraphs/flowir/pkg/flow"
)

// Val is a simple named value type. Types reconstructed from the wire form
// are always Vals; richer [flow.Type] implementations degrade to a Val with
// the same name on a round trip.
type Val string

// TypeName returns the name of the type.
func (v Val) TypeName() string { return string(v) }

// Vals builds a type list from names.
func Vals(names ...string) []flow.Type {
	types := make([]flow.Type, len(names))
	for i, n := range names {
		types[i] = Val(n)
	}
	return types
}

// Signature describes the typed dataflow boundary of an operation: the
// value types consumed at its incoming ports and produced at its outgoing
// ports, by offset.
type Signature struct {
	Input  []flow.Type
	Output []flow.Type
}

// Sig is a convenience constructor for a signature.
func Sig(input, output []flow.Type) Signature {
	return Signature{Input: input, Output: output}
}

// portKind classifies a port against a signature: typed offsets carry
// values, everything else (including the -1 order port) is order-only.
func (s Signature) portKind(p flow.Port) flow.Kind {
	if _, ok := s.portType(p); ok {
		return flow.KindValue
	}
	return flow.KindOrder
}

func (s Signature) portType(p flow.Port) (flow.Type, bool) {
	types := s.Input
	if p.Direction == flow.Outgoing {
		types = s.Output
	}
	if p.Offset < 0 || p.Offset >= len(types) {
		return nil, false
	}
	return types[p.Offset], true
}

func typeNames(types []flow.Type) []string {
	if len(types) == 0 {
		return nil
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.TypeName()
	}
	return names
}

// serialOp is the on-wire shape shared by the whole catalog. The Op field
// discriminates the concrete operation.
type serialOp struct {
	Op        string   `json:"op"`
	OpName    string   `json:"name,omitempty"`
	Extension string   `json:"extension,omitempty"`
	Input     []string `json:"input,omitempty"`
	Output    []string `json:"output,omitempty"`
}

func marshalOp(s serialOp) (json.RawMessage, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// Module is the root container operation. It has no dataflow ports.
type Module struct{}

// Name reports the operation kind.
func (Module) Name() string { return "Module" }

// Serialize renders the payload for the wire form.
func (Module) Serialize(node, parent flow.Node, g *flow.Graph) (json.RawMessage, error) {
	return marshalOp(serialOp{Op: "Module"})
}

// PortKind classifies ports on a Module node; all are order-only.
func (Module) PortKind(p flow.Port) flow.Kind { return flow.KindOrder }

// PortType reports that Module assigns no port types.
func (Module) PortType(p flow.Port) (flow.Type, bool) { return nil, false }

// Input is the entry operation of a dataflow region: it produces the
// region's input values at its outgoing ports.
type Input struct {
	Types []flow.Type
}

func (op Input) sig() Signature { return Signature{Output: op.Types} }

// Name reports the operation kind.
func (Input) Name() string { return "Input" }

// Serialize renders the payload for the wire form.
func (op Input) Serialize(node, parent flow.Node, g *flow.Graph) (json.RawMessage, error) {
	return marshalOp(serialOp{Op: "Input", Output: typeNames(op.Types)})
}

// PortKind classifies the port against the operation's signature.
func (op Input) PortKind(p flow.Port) flow.Kind { return op.sig().portKind(p) }

// PortType returns the value type at the port, if any.
func (op Input) PortType(p flow.Port) (flow.Type, bool) { return op.sig().portType(p) }

// Output is the exit operation of a dataflow region: it consumes the
// region's output values at its incoming ports.
type Output struct {
	Types []flow.Type
}

func (op Output) sig() Signature { return Signature{Input: op.Types} }

// Name reports the operation kind.
func (Output) Name() string { return "Output" }

// Serialize renders the payload for the wire form.
func (op Output) Serialize(node, parent flow.Node, g *flow.Graph) (json.RawMessage, error) {
	return marshalOp(serialOp{Op: "Output", Input: typeNames(op.Types)})
}

// PortKind classifies the port against the operation's signature.
func (op Output) PortKind(p flow.Port) flow.Kind { return op.sig().portKind(p) }

// PortType returns the value type at the port, if any.
func (op Output) PortType(p flow.Port) (flow.Type, bool) { return op.sig().portType(p) }

// DFG is a nested dataflow region with a typed signature. Its children form
// the region body, conventionally delimited by an Input and an Output node.
type DFG struct {
	Sig Signature
}

// Name reports the operation kind.
func (DFG) Name() string { return "DFG" }

// Serialize renders the payload for the wire form.
func (op DFG) Serialize(node, parent flow.Node, g *flow.Graph) (json.RawMessage, error) {
	return marshalOp(serialOp{
		Op:     "DFG",
		Input:  typeNames(op.Sig.Input),
		Output: typeNames(op.Sig.Output),
	})
}

// PortKind classifies the port against the region signature.
func (op DFG) PortKind(p flow.Port) flow.Kind { return op.Sig.portKind(p) }

// PortType returns the value type at the port, if any.
func (op DFG) PortType(p flow.Port) (flow.Type, bool) { return op.Sig.portType(p) }

// Noop passes a single value through unchanged.
type Noop struct {
	Ty flow.Type
}

func (op Noop) sig() Signature {
	return Signature{Input: []flow.Type{op.Ty}, Output: []flow.Type{op.Ty}}
}

// Name reports the operation kind.
func (Noop) Name() string { return "Noop" }

// Serialize renders the payload for the wire form.
func (op Noop) Serialize(node, parent flow.Node, g *flow.Graph) (json.RawMessage, error) {
	return marshalOp(serialOp{Op: "Noop", Input: []string{op.Ty.TypeName()}})
}

// PortKind classifies the port against the operation's signature.
func (op Noop) PortKind(p flow.Port) flow.Kind { return op.sig().portKind(p) }

// PortType returns the value type at the port, if any.
func (op Noop) PortType(p flow.Port) (flow.Type, bool) { return op.sig().portType(p) }

// Custom is an extension operation identified by name, with an explicit
// signature. The engine attaches no semantics to it.
type Custom struct {
	OpName    string
	Extension string
	Sig       Signature
}

// Name reports the operation's own name.
func (op Custom) Name() string { return op.OpName }

// Serialize renders the payload for the wire form.
func (op Custom) Serialize(node, parent flow.Node, g *flow.Graph) (json.RawMessage, error) {
	return marshalOp(serialOp{
		Op:        "Custom",
		OpName:    op.OpName,
		Extension: op.Extension,
		Input:     typeNames(op.Sig.Input),
		Output:    typeNames(op.Sig.Output),
	})
}

// PortKind classifies the port against the operation's signature.
func (op Custom) PortKind(p flow.Port) flow.Kind { return op.Sig.portKind(p) }

// PortType returns the value type at the port, if any.
func (op Custom) PortType(p flow.Port) (flow.Type, bool) { return op.Sig.portType(p) }

// Decode reconstructs a catalog operation from its opaque wire payload.
// It is the [wire.OpDecoder] for this catalog.
func Decode(raw json.RawMessage) (flow.Op, error) {
	var s serialOp
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode op: %w", err)
	}
	switch s.Op {
	case "Module":
		return Module{}, nil
	case "Input":
		return Input{Types: Vals(s.Output...)}, nil
	case "Output":
		return Output{Types: Vals(s.Input...)}, nil
	case "DFG":
		return DFG{Sig: Sig(Vals(s.Input...), Vals(s.Output...))}, nil
	case "Noop":
		if len(s.Input) != 1 {
			return nil, fmt.Errorf("decode op: Noop requires exactly one type, got %d", len(s.Input))
		}
		return Noop{Ty: Val(s.Input[0])}, nil
	case "Custom":
		return Custom{
			OpName:    s.OpName,
			Extension: s.Extension,
			Sig:       Sig(Vals(s.Input...), Vals(s.Output...)),
		}, nil
	default:
		return nil, fmt.Errorf("decode op: unknown operation %q", s.Op)
	}
}

var (
	_ flow.Op = Module{}
	_ flow.Op = Input{}
	_ flow.Op = Output{}
	_ flow.Op = DFG{}
	_ flow.Op = Noop{}
	_ flow.Op = Custom{}
)
