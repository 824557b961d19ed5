package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each document as a JSON string at <prefix>:<collection>:<key> and tracks the keys of a
// collection in the set <prefix>:<collection>:_keys.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client. The store does not own the client unless Close is called.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Backend implements Store.
func (s *RedisStore) Backend() string { return "redis" }

func (s *RedisStore) docKey(collection, key string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, collection, key)
}

func (s *RedisStore) indexKey(collection string) string {
	return fmt.Sprintf("%s:%s:_keys", s.prefix, collection)
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, collection, key string, dest interface{}) error {
	body, err := s.client.Get(ctx, s.docKey(collection, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("redis get %s/%s: %w", collection, key, err)
	}
	return decode(body, dest)
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, collection, key string, value interface{}) error {
	body, err := encode(value)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.docKey(collection, key), body, 0)
		pipe.SAdd(ctx, s.indexKey(collection), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put %s/%s: %w", collection, key, err)
	}
	return nil
}

// List implements Store.
func (s *RedisStore) List(ctx context.Context, collection string) ([]Document, error) {
	keys, err := s.client.SMembers(ctx, s.indexKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list %s keys: %w", collection, err)
	}
	if len(keys) == 0 {
		return []Document{}, nil
	}
	sort.Strings(keys)

	docKeys := make([]string, len(keys))
	for i, k := range keys {
		docKeys[i] = s.docKey(collection, k)
	}
	values, err := s.client.MGet(ctx, docKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list %s: %w", collection, err)
	}

	docs := make([]Document, 0, len(keys))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		docs = append(docs, Document{Key: keys[i], Body: []byte(str)})
	}
	return docs, nil
}

// FindOne implements Store.
func (s *RedisStore) FindOne(ctx context.Context, collection, field, value string, dest interface{}) error {
	docs, err := s.List(ctx, collection)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if fieldEquals(doc.Body, field, value) {
			return decode(doc.Body, dest)
		}
	}
	return ErrNotFound
}

// replaceAttempts bounds how often ReplaceAll restarts after a concurrent write to the collection.
const replaceAttempts = 5

// ReplaceAll implements Store. The key set is read under WATCH, so a Put or Update that adds a key before EXEC
// restarts the replacement instead of leaving a document outside the index. ErrConflict is returned once
// replaceAttempts have all been interrupted.
func (s *RedisStore) ReplaceAll(ctx context.Context, collection string, docs map[string]interface{}) error {
	bodies := make(map[string][]byte, len(docs))
	for k, v := range docs {
		body, err := encode(v)
		if err != nil {
			return err
		}
		bodies[k] = body
	}

	indexKey := s.indexKey(collection)
	replace := func(tx *redis.Tx) error {
		existing, err := tx.SMembers(ctx, indexKey).Result()
		if err != nil {
			return fmt.Errorf("redis replace %s keys: %w", collection, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, k := range existing {
				pipe.Del(ctx, s.docKey(collection, k))
			}
			pipe.Del(ctx, indexKey)
			for k, body := range bodies {
				pipe.Set(ctx, s.docKey(collection, k), body, 0)
				pipe.SAdd(ctx, indexKey, k)
			}
			return nil
		})
		return err
	}

	for attempt := 0; attempt < replaceAttempts; attempt++ {
		err := s.client.Watch(ctx, replace, indexKey)
		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return fmt.Errorf("redis replace %s: %w", collection, err)
		}
	}
	return ErrConflict
}

// Update implements Store with WATCH/MULTI/EXEC. A write to the watched key by another client between the read and
// EXEC aborts the transaction and is reported as ErrConflict.
func (s *RedisStore) Update(ctx context.Context, collection, key string, fn UpdateFunc) error {
	docKey := s.docKey(collection, key)

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, docKey).Bytes()
		exists := true
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				return fmt.Errorf("redis get %s/%s: %w", collection, key, err)
			}
			exists = false
			current = nil
		}

		next, err := fn(current, exists)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, docKey, next, 0)
			pipe.SAdd(ctx, s.indexKey(collection), key)
			return nil
		})
		return err
	}, docKey)

	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	return err
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
