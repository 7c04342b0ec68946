package store

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestMongoStore exercises the store contract against a real MongoDB.
// Set FLOWIR_MONGO_URI (e.g. mongodb://localhost:27017) to enable it.
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("FLOWIR_MONGO_URI")
	if uri == "" {
		t.Skip("FLOWIR_MONGO_URI not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := NewMongoStore(ctx, MongoOptions{
		URI:        uri,
		Database:   "flowir_test",
		Collection: "graphs_test",
	})
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	t.Cleanup(func() {
		_ = s.coll.Drop(context.Background())
		_ = s.Close()
	})

	runStoreSuite(t, s)
}
