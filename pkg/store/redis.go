package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries in Redis: one string key per entry plus a set
// indexing the stored IDs.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // key prefix, default "flowir:"
	TTL      time.Duration // entry expiration, default 0 (no expiration)
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(opts RedisOptions) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "flowir:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: opts.TTL}
}

func (s *RedisStore) entryKey(id uuid.UUID) string {
	return fmt.Sprintf("%sentry:%s", s.prefix, id)
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "entries"
}

// Put persists an entry under its ID, overwriting any previous version.
func (s *RedisStore) Put(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.entryKey(e.ID), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), e.ID.String())
	if s.ttl > 0 {
		pipe.Expire(ctx, s.indexKey(), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store entry: %w", err)
	}
	return nil
}

// Get retrieves an entry by ID, or ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	data, err := s.client.Get(ctx, s.entryKey(id)).Bytes()
	if err == redis.Nil {
		return Entry{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("load entry: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("decode entry %s: %w", id, err)
	}
	return e, nil
}

// List returns all entries without payloads, newest first. Expired entries
// still present in the index are skipped.
func (s *RedisStore) List(ctx context.Context) ([]Entry, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		keys[i] = s.entryKey(parsed)
	}

	results, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch entries: %w", err)
	}

	var entries []Entry
	for _, result := range results {
		data, ok := result.(string)
		if !ok {
			continue // expired or malformed index member
		}
		var e Entry
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			continue
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
func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.entryKey(id))
	pipe.SRem(ctx, s.indexKey(), id.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
