package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/apiwada-admin-api/internal/models"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository is implemented by both session stores.
type SessionRepository interface {
	Create(ctx context.Context, user *models.User) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	RefreshUser(ctx context.Context, user *models.User) error
}

var (
	_ SessionRepository = (*RedisSessionRepository)(nil)
	_ SessionRepository = (*MemorySessionRepository)(nil)
)

// RedisSessionRepository stores sessions as JSON at <prefix>:session:<id> with a TTL. The ids of one user's
// sessions are tracked in <prefix>:session_index:<indexNumber>.
type RedisSessionRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSessionRepository constructs a Redis-backed session store.
func NewRedisSessionRepository(client *redis.Client, prefix string, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisSessionRepository) sessionKey(id string) string {
	return fmt.Sprintf("%s:session:%s", r.prefix, id)
}

func (r *RedisSessionRepository) indexKey(index string) string {
	return fmt.Sprintf("%s:session_index:%s", r.prefix, index)
}

// Create opens a session for user.
func (r *RedisSessionRepository) Create(ctx context.Context, user *models.User) (*models.Session, error) {
	session := newSession(user, r.ttl)
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.sessionKey(session.ID), payload, r.ttl)
		pipe.SAdd(ctx, r.indexKey(user.IndexNumber), session.ID)
		if r.ttl > 0 {
			pipe.Expire(ctx, r.indexKey(user.IndexNumber), r.ttl)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis create session: %w", err)
	}
	return session, nil
}

// Get loads a live session.
func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	raw, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete ends a session. Deleting an unknown session is not an error.
func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	session, err := r.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.sessionKey(id))
		pipe.SRem(ctx, r.indexKey(session.User.IndexNumber), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// RefreshUser replaces the user snapshot in every live session of user, keeping each session's TTL.
func (r *RedisSessionRepository) RefreshUser(ctx context.Context, user *models.User) error {
	ids, err := r.client.SMembers(ctx, r.indexKey(user.IndexNumber)).Result()
	if err != nil {
		return fmt.Errorf("redis list sessions: %w", err)
	}
	for _, id := range ids {
		session, err := r.Get(ctx, id)
		if errors.Is(err, ErrSessionNotFound) {
			r.client.SRem(ctx, r.indexKey(user.IndexNumber), id)
			continue
		}
		if err != nil {
			return err
		}
		session.User = *user
		payload, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		if err := r.client.SetArgs(ctx, r.sessionKey(id), payload, redis.SetArgs{KeepTTL: true, Mode: "XX"}).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("redis refresh session: %w", err)
		}
	}
	return nil
}

// MemorySessionRepository keeps sessions in process using go-cache.
type MemorySessionRepository struct {
	cache *gocache.Cache
	ttl   time.Duration

	mu      sync.Mutex
	byIndex map[string]map[string]struct{}
}

// NewMemorySessionRepository constructs an in-process session store.
func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	cleanup := ttl
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &MemorySessionRepository{
		cache:   gocache.New(ttl, cleanup),
		ttl:     ttl,
		byIndex: make(map[string]map[string]struct{}),
	}
}

// Create opens a session for user.
func (r *MemorySessionRepository) Create(_ context.Context, user *models.User) (*models.Session, error) {
	session := newSession(user, r.ttl)
	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Set(session.ID, payload, gocache.DefaultExpiration)
	ids, ok := r.byIndex[user.IndexNumber]
	if !ok {
		ids = make(map[string]struct{})
		r.byIndex[user.IndexNumber] = ids
	}
	ids[session.ID] = struct{}{}
	return session, nil
}

// Get loads a live session.
func (r *MemorySessionRepository) Get(_ context.Context, id string) (*models.Session, error) {
	raw, ok := r.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	var session models.Session
	if err := json.Unmarshal(raw.([]byte), &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete ends a session.
func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	session, err := r.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(id)
	delete(r.byIndex[session.User.IndexNumber], id)
	return nil
}

// RefreshUser replaces the user snapshot in every live session of user.
func (r *MemorySessionRepository) RefreshUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id := range r.byIndex[user.IndexNumber] {
		raw, expiresAt, ok := r.cache.GetWithExpiration(id)
		if !ok {
			delete(r.byIndex[user.IndexNumber], id)
			continue
		}
		var session models.Session
		if err := json.Unmarshal(raw.([]byte), &session); err != nil {
			return fmt.Errorf("unmarshal session: %w", err)
		}
		session.User = *user
		payload, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		remaining := gocache.NoExpiration
		if !expiresAt.IsZero() {
			remaining = time.Until(expiresAt)
			if remaining <= 0 {
				continue
			}
		}
		r.cache.Set(id, payload, remaining)
	}
	return nil
}

func newSession(user *models.User, ttl time.Duration) *models.Session {
	now := time.Now().UTC()
	session := &models.Session{ID: uuid.NewString(), User: *user, CreatedAt: now}
	if ttl > 0 {
		session.ExpiresAt = now.Add(ttl)
	}
	return session
}
