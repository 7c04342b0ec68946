// Package store persists serialized flow graphs under stable identifiers.
//
// A stored graph is an [Entry]: the wire-form JSON payload plus naming and
// integrity metadata. Three backends implement [Store]: a directory of JSON
// files for local tooling, Redis for shared short-lived storage, and MongoDB
// for durable collections.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flowgraphs/flowir/pkg/flow"
	"github.com/flowgraphs/flowir/pkg/wire"
)

// ErrNotFound is returned when a requested entry does not exist.
var ErrNotFound = errors.New("entry not found")

// Entry is one stored graph.
type Entry struct {
	ID        uuid.UUID       `json:"id" bson:"_id"`
	Name      string          `json:"name" bson:"name"`
	Hash      string          `json:"hash" bson:"hash"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	Payload   json.RawMessage `json:"payload" bson:"payload"`
}

// Store is a keyed collection of graph entries. Implementations are safe
// for concurrent use.
type Store interface {
	// Put persists an entry under its ID, overwriting any previous version.
	Put(ctx context.Context, e Entry) error

	// Get retrieves an entry by ID, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (Entry, error)

	// List returns all entries without payloads, newest first.
	List(ctx context.Context) ([]Entry, error)

	// Delete removes an entry by ID. Deleting a missing entry is not an
	// error.
	Delete(ctx context.Context, id uuid.UUID) error

	// Close releases backend resources.
	Close() error
}

// Hash computes the SHA-256 content hash of a payload.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NewEntry builds an entry for a graph: a fresh ID, the wire-form payload,
// and its content hash.
func NewEntry(name string, g *flow.Graph) (Entry, error) {
	payload, err := wire.Marshal(g)
	if err != nil {
		return Entry{}, fmt.Errorf("serialize graph: %w", err)
	}
	return Entry{
		ID:        uuid.New(),
		Name:      name,
		Hash:      Hash(payload),
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
	}, nil
}

// Graph rebuilds the live graph from the entry payload.
func (e Entry) Graph(dec wire.OpDecoder) (*flow.Graph, error) {
	return wire.Unmarshal(e.Payload, dec)
}

// Verify reports whether the payload still matches the recorded hash.
func (e Entry) Verify() bool {
	return e.Hash == Hash(e.Payload)
}
