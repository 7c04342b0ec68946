package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// FileStore persists entries as JSON files in a directory, one file per
// entry named <id>.json.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store in the given directory.
// The directory is created if it does not exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String()+".json")
}

// Put persists an entry under its ID, overwriting any previous version.
func (s *FileStore) Put(ctx context.Context, e Entry) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	return os.WriteFile(s.path(e.ID), data, 0644)
}

// Get retrieves an entry by ID, or ErrNotFound.
func (s *FileStore) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return Entry{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Entry{}, err
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("decode entry %s: %w", id, err)
	}
	return e, nil
}

// List returns all entries without payloads, newest first.
func (s *FileStore) List(ctx context.Context) ([]Entry, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(f.Name(), ".json"))
		if err != nil {
			continue // not a store file
		}
		e, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		e.Payload = nil
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// Delete removes an entry by ID. Deleting a missing entry is not an error.
func (s *FileStore) Delete(ctx context.Context, id uuid.UUID) error {
	err := os.Remove(s.path(id))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for a file store.
func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
