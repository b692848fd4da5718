package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "session:"

// SessionStore records the single currently-valid token per user email.
// Putting a new token supersedes any previous one, so re-login invalidates
// older sessions immediately.
type SessionStore interface {
	Put(ctx context.Context, email, token string) error
	Match(ctx context.Context, email, token string) (bool, error)
	Remove(ctx context.Context, email string) error
	Clear(ctx context.Context) error
}

// MemorySessionStore keeps sessions in-process; used in tests and when
// redis is not configured.
type MemorySessionStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{tokens: make(map[string]string)}
}

func (s *MemorySessionStore) Put(ctx context.Context, email, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[email] = token
	return nil
}

func (s *MemorySessionStore) Match(ctx context.Context, email, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	current, ok := s.tokens[email]
	return ok && current == token, nil
}

func (s *MemorySessionStore) Remove(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, email)
	return nil
}

func (s *MemorySessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]string)
	return nil
}

// RedisSessionStore keys sessions by email with a TTL matching the token
// lifetime, so abandoned sessions expire on their own.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (s *RedisSessionStore) Put(ctx context.Context, email, token string) error {
	return s.rdb.Set(ctx, sessionKeyPrefix+email, token, s.ttl).Err()
}

func (s *RedisSessionStore) Match(ctx context.Context, email, token string) (bool, error) {
	current, err := s.rdb.Get(ctx, sessionKeyPrefix+email).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return current == token, nil
}

func (s *RedisSessionStore) Remove(ctx context.Context, email string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+email).Err()
}

func (s *RedisSessionStore) Clear(ctx context.Context) error {
	iter := s.rdb.Scan(ctx, 0, sessionKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
