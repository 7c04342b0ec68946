package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedis(t *testing.T, opts RedisOptions) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	opts.Addr = mr.Addr()
	s := NewRedisStore(opts)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRedisStore(t *testing.T) {
	runStoreSuite(t, newTestRedis(t, RedisOptions{}))
}

func TestRedisStoreKeyPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStore(RedisOptions{Addr: mr.Addr(), Prefix: "custom:"})
	defer s.Close()
	ctx := context.Background()

	e, err := NewEntry("prefixed", testGraph(t))
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	if err := s.Put(ctx, e); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !mr.Exists("custom:entry:" + e.ID.String()) {
		t.Fatal("entry key missing custom prefix")
	}
	if !mr.Exists("custom:entries") {
		t.Fatal("index key missing custom prefix")
	}
}

func TestRedisStoreListSkipsExpired(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStore(RedisOptions{Addr: mr.Addr(), TTL: time.Minute})
	defer s.Close()
	ctx := context.Background()

	e, err := NewEntry("ephemeral", testGraph(t))
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	if err := s.Put(ctx, e); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Expire the entry but keep the index set alive.
	mr.FastForward(30 * time.Second)
	mr.Del("flowir:entry:" + e.ID.String())

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("List returned %d entries, want 0", len(entries))
	}
}
