package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReservationState is what Reserve found for a key.
type ReservationState int

const (
	// ReservationNew means the key was free and is now held as pending.
	ReservationNew ReservationState = iota
	// ReservationPending means another submission holds the key.
	ReservationPending
	// ReservationSent means the key already produced a delivered notification.
	ReservationSent
)

// IdempotencyStore de-duplicates inquiry submissions by client key.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (ReservationState, error)
	MarkSent(ctx context.Context, key string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

const (
	statePending = "pending"
	stateSent    = "sent"

	redisKeyPrefix = "inquiry:idem:"
)

type RedisIdempotencyStore struct {
	rdb *redis.Client
}

func NewRedisIdempotencyStore(rdb *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb}
}

func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (ReservationState, error) {
	k := redisKeyPrefix + key
	// one retry covers a key that expired between SETNX and GET
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.rdb.SetNX(ctx, k, statePending, ttl).Result()
		if err != nil {
			return ReservationNew, fmt.Errorf("reserve %s: %w", key, err)
		}
		if ok {
			return ReservationNew, nil
		}

		val, err := s.rdb.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return ReservationNew, fmt.Errorf("read %s: %w", key, err)
		}
		if val == stateSent {
			return ReservationSent, nil
		}
		return ReservationPending, nil
	}
	return ReservationPending, nil
}

func (s *RedisIdempotencyStore) MarkSent(ctx context.Context, key string, ttl time.Duration) error {
	return s.rdb.Set(ctx, redisKeyPrefix+key, stateSent, ttl).Err()
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, redisKeyPrefix+key).Err()
}

type memoryEntry struct {
	state   string
	expires time.Time
}

// MemoryIdempotencyStore keeps keys in process. Used when Redis is not configured.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryIdempotencyStore) Reserve(_ context.Context, key string, ttl time.Duration) (ReservationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	if e, ok := s.entries[key]; ok {
		if e.state == stateSent {
			return ReservationSent, nil
		}
		return ReservationPending, nil
	}
	s.entries[key] = memoryEntry{state: statePending, expires: now.Add(ttl)}
	return ReservationNew, nil
}

func (s *MemoryIdempotencyStore) MarkSent(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{state: stateSent, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// sweep drops expired keys. Caller holds mu.
func (s *MemoryIdempotencyStore) sweep(now time.Time) {
	for k, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, k)
		}
	}
}
