package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps entries in a MongoDB collection, one document per entry
// keyed by the entry ID.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoOptions configures the MongoDB connection.
type MongoOptions struct {
	URI        string
	Database   string // default "flowir"
	Collection string // default "graphs"
}

// mongoEntry is the document shape. IDs are stored as strings so documents
// stay readable from the shell.
type mongoEntry struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Hash      string    `bson:"hash"`
	CreatedAt time.Time `bson:"created_at"`
	Payload   []byte    `bson:"payload,omitempty"`
}

func toDoc(e Entry) mongoEntry {
	return mongoEntry{
		ID:        e.ID.String(),
		Name:      e.Name,
		Hash:      e.Hash,
		CreatedAt: e.CreatedAt,
		Payload:   e.Payload,
	}
}

func (d mongoEntry) toEntry() (Entry, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return Entry{}, fmt.Errorf("parse entry id %q: %w", d.ID, err)
	}
	return Entry{
		ID:        id,
		Name:      d.Name,
		Hash:      d.Hash,
		CreatedAt: d.CreatedAt,
		Payload:   d.Payload,
	}, nil
}

// NewMongoStore connects to MongoDB and returns a store over the configured
// collection.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	db := opts.Database
	if db == "" {
		db = "flowir"
	}
	coll := opts.Collection
	if coll == "" {
		coll = "graphs"
	}
	return &MongoStore{client: client, coll: client.Database(db).Collection(coll)}, nil
}

// Put persists an entry under its ID, overwriting any previous version.
func (s *MongoStore) Put(ctx context.Context, e Entry) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": e.ID.String()},
		toDoc(e),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("store entry: %w", err)
	}
	return nil
}

// Get retrieves an entry by ID, or ErrNotFound.
func (s *MongoStore) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	var doc mongoEntry
	err := s.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return Entry{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("load entry: %w", err)
	}
	return doc.toEntry()
}

// List returns all entries without payloads, newest first.
func (s *MongoStore) List(ctx context.Context) ([]Entry, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().
		SetProjection(bson.M{"payload": 0}).
		SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer cur.Close(ctx)

	var entries []Entry
	for cur.Next(ctx) {
		var doc mongoEntry
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode entry: %w", err)
		}
		e, err := doc.toEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, cur.Err()
}

// Delete removes an entry by ID. Deleting a missing entry is not an error.
func (s *MongoStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id.String()}); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
