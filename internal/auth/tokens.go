package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheTimeout = 3 * time.Second

// TokenStore maps opaque tokens to user IDs with expiry.
type TokenStore interface {
	Put(token, userID string, ttl time.Duration) error
	Get(token string) (string, error)
	Delete(token string) error
}

// MemoryTokenStore is an in-memory TokenStore for tests.
type MemoryTokenStore struct {
	tokens map[string]memoryToken
	mu     sync.RWMutex
	now    func() time.Time
}

type memoryToken struct {
	userID    string
	expiresAt time.Time
}

// NewMemoryTokenStore creates an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		tokens: make(map[string]memoryToken),
		now:    time.Now,
	}
}

func (s *MemoryTokenStore) Put(token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = memoryToken{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryTokenStore) Get(token string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tk, ok := s.tokens[token]
	if !ok || s.now().After(tk.expiresAt) {
		return "", ErrInvalidToken
	}
	return tk.userID, nil
}

func (s *MemoryTokenStore) Delete(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

// RedisTokenStore keeps tokens in Redis so sessions survive restarts and are
// shared across instances. Expiry is delegated to Redis TTLs.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore creates a Redis-backed token store.
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func tokenKey(token string) string {
	return "auth:token:" + token
}

func (s *RedisTokenStore) Put(token, userID string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()

	if err := s.client.Set(ctx, tokenKey(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Get(token string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()

	userID, err := s.client.Get(ctx, tokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("get token: %w", err)
	}
	return userID, nil
}

func (s *RedisTokenStore) Delete(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()

	if err := s.client.Del(ctx, tokenKey(token)).Err(); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
