// Package manifest builds flow graphs from human-authored TOML descriptions.
//
// A manifest names its nodes, so authors can wire edges by name instead of
// node index. Building a manifest produces a live graph plus the name-to-node
// mapping for further programmatic work.
package manifest

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/flowgraphs/flowir/pkg/flow"
	"github.com/flowgraphs/flowir/pkg/ops"
)

// ErrDuplicateNode is returned when two manifest nodes share a name.
var ErrDuplicateNode = errors.New("duplicate node name")

// ErrUnknownNode is returned when an edge or parent references a name no
// node declares.
var ErrUnknownNode = errors.New("unknown node name")

// Manifest is the top-level TOML document: a root operation plus named
// nodes and name-addressed edges.
type Manifest struct {
	Name  string `toml:"name"`
	Root  string `toml:"root,omitempty"`
	Nodes []Node `toml:"node"`
	Edges []Edge `toml:"edge"`
}

// Node declares one graph node. Parent names an earlier node, or is empty
// for a direct child of the root. Outs optionally declares the outgoing
// port arity so open ranges over the node's ports resolve.
type Node struct {
	Name      string   `toml:"name"`
	Op        string   `toml:"op"`
	Parent    string   `toml:"parent,omitempty"`
	Extension string   `toml:"extension,omitempty"`
	Input     []string `toml:"input,omitempty"`
	Output    []string `toml:"output,omitempty"`
	Outs      *int     `toml:"outs,omitempty"`
}

// Edge wires an outgoing port of From to an incoming port of To. Ports
// default to offset 0; -1 addresses the order port past the connected
// data ports.
type Edge struct {
	From     string `toml:"from"`
	FromPort int    `toml:"from_port"`
	To       string `toml:"to"`
	ToPort   int    `toml:"to_port"`
}

// Parse decodes a TOML manifest from bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// ParseFile reads and decodes a TOML manifest file.
func ParseFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}

// Build materializes the manifest as a live graph. It returns the graph
// and the mapping from manifest names to node identities. Nodes are created
// in declaration order, so a parent must be declared before its children.
func (m *Manifest) Build() (*flow.Graph, map[string]flow.Node, error) {
	rootOp := "Module"
	if m.Root != "" {
		rootOp = m.Root
	}
	op, err := opFor(Node{Op: rootOp})
	if err != nil {
		return nil, nil, fmt.Errorf("root: %w", err)
	}
	g := flow.New(op)

	byName := make(map[string]flow.Node, len(m.Nodes))
	for _, mn := range m.Nodes {
		if mn.Name == "" {
			return nil, nil, fmt.Errorf("node %d: %w: empty name", len(byName), ErrDuplicateNode)
		}
		if _, ok := byName[mn.Name]; ok {
			return nil, nil, fmt.Errorf("node %q: %w", mn.Name, ErrDuplicateNode)
		}

		parent := g.Root()
		if mn.Parent != "" {
			p, ok := byName[mn.Parent]
			if !ok {
				return nil, nil, fmt.Errorf("node %q: parent %q: %w", mn.Name, mn.Parent, ErrUnknownNode)
			}
			parent = p
		}

		op, err := opFor(mn)
		if err != nil {
			return nil, nil, fmt.Errorf("node %q: %w", mn.Name, err)
		}

		var n flow.Node
		if mn.Outs != nil {
			n, err = g.AddNodeWithOuts(op, parent, *mn.Outs)
		} else {
			n, err = g.AddNode(op, parent)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("node %q: %w", mn.Name, err)
		}
		byName[mn.Name] = n
	}

	for i, me := range m.Edges {
		src, ok := byName[me.From]
		if !ok {
			return nil, nil, fmt.Errorf("edge %d: from %q: %w", i, me.From, ErrUnknownNode)
		}
		dst, ok := byName[me.To]
		if !ok {
			return nil, nil, fmt.Errorf("edge %d: to %q: %w", i, me.To, ErrUnknownNode)
		}
		if err := g.AddLink(src.Out(me.FromPort), dst.Inp(me.ToPort)); err != nil {
			return nil, nil, fmt.Errorf("edge %d (%s -> %s): %w", i, me.From, me.To, err)
		}
	}
	return g, byName, nil
}

// Load parses a manifest file and builds its graph in one step.
func Load(path string) (*flow.Graph, map[string]flow.Node, error) {
	m, err := ParseFile(path)
	if err != nil {
		return nil, nil, err
	}
	return m.Build()
}

// opFor maps a manifest node declaration to a catalog operation.
func opFor(mn Node) (flow.Op, error) {
	switch mn.Op {
	case "Module":
		return ops.Module{}, nil
	case "Input":
		return ops.Input{Types: ops.Vals(mn.Output...)}, nil
	case "Output":
		return ops.Output{Types: ops.Vals(mn.Input...)}, nil
	case "DFG":
		return ops.DFG{Sig: ops.Sig(ops.Vals(mn.Input...), ops.Vals(mn.Output...))}, nil
	case "Noop":
		if len(mn.Input) != 1 {
			return nil, fmt.Errorf("Noop requires exactly one input type, got %d", len(mn.Input))
		}
		return ops.Noop{Ty: ops.Val(mn.Input[0])}, nil
	case "":
		return nil, errors.New("missing op")
	default:
		return ops.Custom{
			OpName:    mn.Op,
			Extension: mn.Extension,
			Sig:       ops.Sig(ops.Vals(mn.Input...), ops.Vals(mn.Output...)),
		}, nil
	}
}
