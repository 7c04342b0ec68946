package flow

import (
	"errors"
	"slices"
	"testing"
)

func TestInsertGraph(t *testing.T) {
	src := New(op("src-root"))
	in := mustAdd(t, src, "in", src.Root())
	out := mustAdd(t, src, "out", src.Root())
	if err := src.AddLink(in.Out(0), out.Inp(0)); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	if err := src.AddLink(in.Out(1), out.Inp(1)); err != nil {
		t.Fatalf("AddLink: %v", err)
	}

	dst := New(op("dst-root"))
	region := mustAdd(t, dst, "region", dst.Root())

	mapping, err := dst.InsertGraph(src, region)
	if err != nil {
		t.Fatalf("InsertGraph: %v", err)
	}

	// The mapping covers every source node.
	if len(mapping) != src.NumNodes() {
		t.Fatalf("mapping covers %d nodes, want %d", len(mapping), src.NumNodes())
	}
	for _, srcNode := range []Node{src.Root(), in, out} {
		if _, ok := mapping[srcNode]; !ok {
			t.Fatalf("mapping missing %v", srcNode)
		}
	}

	// The source root lands under the chosen parent.
	newRoot := mapping[src.Root()]
	parent, ok, err := dst.Parent(newRoot)
	if err != nil || !ok || parent != region {
		t.Fatalf("Parent(mapped root) = %v ok=%v err=%v, want %v", parent, ok, err, region)
	}

	// Hierarchy below the mapped root is reproduced.
	children, err := dst.Children(newRoot)
	if err != nil {
		t.Fatalf("Children(mapped root): %v", err)
	}
	if want := []Node{mapping[in], mapping[out]}; !slices.Equal(children, want) {
		t.Fatalf("Children(mapped root) = %v, want %v", children, want)
	}

	// Links are replayed in insertion order against the mapped identities.
	got := collectLinked(t, dst, mapping[in].Out(0))
	if want := []Port{mapping[out].Inp(0)}; !slices.Equal(got, want) {
		t.Fatalf("LinkedPorts = %v, want %v", got, want)
	}
	if got := dst.NumLinks(); got != 2 {
		t.Fatalf("NumLinks() = %d, want 2", got)
	}

	// The source graph is untouched.
	if got := src.NumNodes(); got != 3 {
		t.Fatalf("source NumNodes() = %d, want 3", got)
	}
}

func TestInsertGraphDefaultParent(t *testing.T) {
	src := New(op("src-root"))
	dst := New(op("dst-root"))

	mapping, err := dst.InsertGraph(src, Node{})
	if err != nil {
		t.Fatalf("InsertGraph: %v", err)
	}
	parent, ok, err := dst.Parent(mapping[src.Root()])
	if err != nil || !ok || parent != dst.Root() {
		t.Fatalf("mapped root parent = %v ok=%v err=%v, want dst root", parent, ok, err)
	}
}

func TestInsertGraphParentBeforeChild(t *testing.T) {
	// Build a source whose storage order places a child before its parent:
	// load from a node table with a forward parent reference.
	src, err := Load([]RawNode{
		{Op: op("root"), Parent: 0},
		{Op: op("child"), Parent: 2}, // parent stored after the child
		{Op: op("region"), Parent: 0},
	})
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}

	dst := New(op("dst-root"))
	if _, err := dst.InsertGraph(src, dst.Root()); !errors.Is(err, ErrParentBeforeChild) {
		t.Fatalf("InsertGraph err = %v, want ErrParentBeforeChild", err)
	}
}

func TestInsertGraphStaleParent(t *testing.T) {
	src := New(op("src-root"))
	dst := New(op("dst-root"))
	dead := mustAdd(t, dst, "dead", dst.Root())
	if _, err := dst.DeleteNode(dead); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}

	if _, err := dst.InsertGraph(src, dead); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("InsertGraph under stale parent err = %v, want ErrNodeNotFound", err)
	}
}

func TestInsertGraphSkipsFreedSlots(t *testing.T) {
	src := New(op("src-root"))
	a := mustAdd(t, src, "a", src.Root())
	b := mustAdd(t, src, "b", src.Root())
	if _, err := src.DeleteNode(a); err != nil {
		t.Fatalf("DeleteNode(a): %v", err)
	}

	dst := New(op("dst-root"))
	mapping, err := dst.InsertGraph(src, dst.Root())
	if err != nil {
		t.Fatalf("InsertGraph: %v", err)
	}
	if len(mapping) != 2 {
		t.Fatalf("mapping covers %d nodes, want 2", len(mapping))
	}
	if _, ok := mapping[a]; ok {
		t.Fatal("mapping contains deleted source node")
	}
	if _, ok := mapping[b]; !ok {
		t.Fatal("mapping missing live source node")
	}
}

func TestInsertGraphPreservesOrderLinks(t *testing.T) {
	src := New(op("src-root"))
	a := mustAdd(t, src, "a", src.Root())
	b := mustAdd(t, src, "b", src.Root())
	if err := src.AddLink(a.Out(-1), b.Inp(-1)); err != nil {
		t.Fatalf("AddLink: %v", err)
	}

	dst := New(op("dst-root"))
	mapping, err := dst.InsertGraph(src, dst.Root())
	if err != nil {
		t.Fatalf("InsertGraph: %v", err)
	}

	succ, err := dst.OrderSuccessors(mapping[a])
	if err != nil {
		t.Fatalf("OrderSuccessors: %v", err)
	}
	if got := slices.Collect(succ); !slices.Equal(got, []Node{mapping[b]}) {
		t.Fatalf("order successors = %v, want [%v]", got, mapping[b])
	}
}
