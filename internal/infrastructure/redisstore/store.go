package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/key-verify-api/internal/config"
	"github.com/key-verify-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

// NewClient builds a go-redis client from cfg.RedisURL (redis:// or rediss://),
// bounding every network call by cfg.StoreTimeout.
func NewClient(cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = cfg.StoreTimeout
	opts.ReadTimeout = cfg.StoreTimeout
	opts.WriteTimeout = cfg.StoreTimeout
	opts.PoolTimeout = cfg.StoreTimeout
	opts.ConnMaxIdleTime = 5 * time.Minute
	return redis.NewClient(opts), nil
}

// Store keeps each document as a hash whose key is the document path.
// Hashes are flat string maps: strings are stored as-is, other values are
// JSON-encoded on write and read back as their JSON text.
type Store struct {
	client redis.UniversalClient
}

func NewStore(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

// Get returns the hash at path as a document, or nil when the key is absent.
func (s *Store) Get(ctx context.Context, path string) (domain.Document, error) {
	fields, err := s.client.HGetAll(ctx, path).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall %s: %w: %w", path, classify(err), err)
	}
	return decodeFields(fields), nil
}

// Patch sets only the fields present in doc; HSET leaves the rest of the hash alone.
func (s *Store) Patch(ctx context.Context, path string, doc domain.Document) error {
	values, err := encodeFields(doc)
	if err != nil {
		return fmt.Errorf("redis hset %s: %w", path, err)
	}
	if err := s.client.HSet(ctx, path, values).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w: %w", path, classify(err), err)
	}
	return nil
}

func encodeFields(doc domain.Document) (map[string]interface{}, error) {
	if len(doc) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}
	values := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		if s, ok := v.(string); ok {
			values[k] = s
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", k, err)
		}
		values[k] = string(b)
	}
	return values, nil
}

func decodeFields(fields map[string]string) domain.Document {
	if len(fields) == 0 {
		return nil
	}
	doc := make(domain.Document, len(fields))
	for k, v := range fields {
		doc[k] = v
	}
	return doc
}

// classify maps a command error to a store sentinel. A key holding something
// other than a hash is bad data, not an outage.
func classify(err error) error {
	if strings.HasPrefix(err.Error(), "WRONGTYPE") {
		return domain.ErrMalformedDocument
	}
	return domain.ErrStoreUnavailable
}
