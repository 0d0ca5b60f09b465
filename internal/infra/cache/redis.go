package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/pratyek/grocery-app/internal/domain/cart"
)

const (
	cartKeyPrefix        = "cart:session:"
	idempotencyKeyPrefix = "idempotency:"
)

type RedisCartStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCartStore(rdb *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{rdb: rdb, ttl: ttl}
}

func (s *RedisCartStore) Load(ctx context.Context, sessionID string) ([]cart.Line, error) {
	raw, err := s.rdb.Get(ctx, cartKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return []cart.Line{}, nil
	}
	if err != nil {
		return nil, err
	}

	var lines []cart.Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []cart.Line{}
	}
	return lines, nil
}

func (s *RedisCartStore) Save(ctx context.Context, sessionID string, lines []cart.Line) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, cartKeyPrefix+sessionID, data, s.ttl).Err()
}

func (s *RedisCartStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, cartKeyPrefix+sessionID).Err()
}

// RedisIdempotency shares keys across API replicas.
type RedisIdempotency struct {
	rdb *redis.Client
}

func NewRedisIdempotency(rdb *redis.Client) *RedisIdempotency {
	return &RedisIdempotency{rdb: rdb}
}

func (s *RedisIdempotency) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, idempotencyKeyPrefix+key, "1", ttl).Result()
}

func (s *RedisIdempotency) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, idempotencyKeyPrefix+key).Err()
}
