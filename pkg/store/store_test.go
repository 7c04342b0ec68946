package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/flowgraphs/flowir/pkg/flow"
	"github.com/flowgraphs/flowir/pkg/ops"
)

func testGraph(t *testing.T) *flow.Graph {
	t.Helper()
	g := flow.New(ops.Module{})
	a, err := g.AddNode(ops.Noop{Ty: ops.Val("bit")}, g.Root())
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	b, err := g.AddNode(ops.Noop{Ty: ops.Val("bit")}, g.Root())
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := g.AddLink(a.Out(0), b.Inp(0)); err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	return g
}

func TestNewEntry(t *testing.T) {
	e, err := NewEntry("pipeline", testGraph(t))
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	if e.ID == uuid.Nil {
		t.Fatal("entry has nil ID")
	}
	if e.Name != "pipeline" {
		t.Fatalf("name = %q, want pipeline", e.Name)
	}
	if !e.Verify() {
		t.Fatal("fresh entry fails verification")
	}

	g, err := e.Graph(ops.Decode)
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}
	if got := g.NumNodes(); got != 3 {
		t.Fatalf("NumNodes() = %d, want 3", got)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	e, err := NewEntry("pipeline", testGraph(t))
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	e.Payload = append(e.Payload, ' ')
	if e.Verify() {
		t.Fatal("tampered payload passed verification")
	}
}

// runStoreSuite exercises the Store contract against any backend.
func runStoreSuite(t *testing.T, s Store) {
	ctx := context.Background()

	first, err := NewEntry("first", testGraph(t))
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	second, err := NewEntry("second", testGraph(t))
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	second.CreatedAt = first.CreatedAt.Add(time.Second)

	if err := s.Put(ctx, first); err != nil {
		t.Fatalf("Put(first): %v", err)
	}
	if err := s.Put(ctx, second); err != nil {
		t.Fatalf("Put(second): %v", err)
	}

	got, err := s.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "first" || got.Hash != first.Hash {
		t.Fatalf("Get = %+v, want name/hash of first", got)
	}
	if !got.Verify() {
		t.Fatal("retrieved entry fails verification")
	}

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(entries))
	}
	if entries[0].Name != "second" || entries[1].Name != "first" {
		t.Fatalf("List order = %q, %q, want newest first", entries[0].Name, entries[1].Name)
	}
	for _, e := range entries {
		if len(e.Payload) != 0 {
			t.Fatalf("List entry %q carries a payload", e.Name)
		}
	}

	if err := s.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete err = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, first.ID); err != nil {
		t.Fatalf("double Delete: %v", err)
	}

	if _, err := s.Get(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(random) err = %v, want ErrNotFound", err)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close()
	runStoreSuite(t, s)
}

func TestFileStorePutOverwrites(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	e, err := NewEntry("v1", testGraph(t))
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	if err := s.Put(ctx, e); err != nil {
		t.Fatalf("Put: %v", err)
	}
	e.Name = "v2"
	if err := s.Put(ctx, e); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, e.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "v2" {
		t.Fatalf("name = %q, want v2", got.Name)
	}
}
