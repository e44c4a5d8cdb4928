// Package session issues, resolves and revokes login sessions. A session is a
// server-side record mapping a random id to a user id; the client holds a
// signed token naming that id in a cookie.
package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"recipebox/internal/cache"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by a Store when the session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Store persists session records.
type Store interface {
	Save(ctx context.Context, id string, userID uint, ttl time.Duration) error
	Load(ctx context.Context, id string) (uint, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// RedisStore keeps sessions in Redis under session:<id> with a TTL.
type RedisStore struct {
	rdb redis.Cmdable
}

// NewRedisStore returns a Store backed by rdb.
func NewRedisStore(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Save(ctx context.Context, id string, userID uint, ttl time.Duration) error {
	return s.rdb.Set(ctx, cache.SessionKey(id), strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, id string) (uint, error) {
	v, err := s.rdb.Get(ctx, cache.SessionKey(id)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, cache.SessionKey(id)).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

type memoryEntry struct {
	userID  uint
	expires time.Time
}

// MemoryStore keeps sessions in process memory. Sessions are lost on restart
// and are not shared between replicas.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore returns an empty in-process Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, id string, userID uint, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.entries[id] = memoryEntry{userID: userID, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (uint, error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok || !s.now().Before(e.expires) {
		return 0, ErrNotFound
	}
	return e.userID, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// Len reports the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) sweepLocked() {
	now := s.now()
	for id, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, id)
		}
	}
}
