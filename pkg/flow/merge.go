package flow

import "fmt"

// InsertGraph copies the complete source graph into g under parent,
// remapping every node identity and replaying every link. A zero parent
// inserts under g's root. The returned mapping covers every live source
// node and translates source identities to their new identities in g.
//
// Source nodes are walked in their storage order, and each node's new
// parent is resolved through the mapping built so far (the source root maps
// to parent). The walk therefore requires the source storage order to list
// every parent before its children; it fails with [ErrParentBeforeChild]
// otherwise. No topological pre-pass is attempted - the ordering is an
// explicit precondition, satisfied by any graph built through [Graph.AddNode]
// or reloaded from the wire form of one.
//
// The source graph is not modified. On failure g may already contain a
// partial copy of the source; there is no rollback.
func (g *Graph) InsertGraph(src *Graph, parent Node) (map[Node]Node, error) {
	if !parent.IsValid() {
		parent = g.root
	}
	if _, err := g.slotOf(parent); err != nil {
		return nil, fmt.Errorf("insert graph: %w", err)
	}

	mapping := make(map[Node]Node, src.NumNodes())
	for i := range src.slots {
		s := &src.slots[i]
		if !s.live {
			continue
		}
		newParent := parent
		if sp := s.data.Parent; sp.IsValid() {
			mapped, ok := mapping[sp]
			if !ok {
				return nil, fmt.Errorf("insert graph: node %v before parent %v: %w",
					s.data.node, sp, ErrParentBeforeChild)
			}
			newParent = mapped
		}
		outs := -1
		if hint, ok := s.data.node.NumOutPorts(); ok {
			outs = hint
		}
		n, err := g.AddNodeWithOuts(s.data.Op, newParent, outs)
		if err != nil {
			return nil, fmt.Errorf("insert graph: %w", err)
		}
		mapping[s.data.node] = n
	}

	for _, e := range src.links.order {
		srcPort := mapping[src.nodeAt(e.src.node)].Out(e.src.offset)
		dstPort := mapping[src.nodeAt(e.dst.node)].Inp(e.dst.offset)
		if err := g.AddLink(srcPort, dstPort); err != nil {
			return nil, fmt.Errorf("insert graph: %w", err)
		}
	}
	return mapping, nil
}
