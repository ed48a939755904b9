package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"fieldnorm/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyPrefix = "fieldnorm:idem:"
	redisStoreTimeout    = time.Second
)

// RedisIdempotencyStore shares cached responses between instances. Keys
// expire through Redis TTLs. Redis failures are logged and treated as a
// cache miss.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisIdempotencyStore {
	if log == nil {
		log = logger.Nop()
	}
	return &RedisIdempotencyStore{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func (s *RedisIdempotencyStore) Get(key string) (*CachedResponse, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisStoreTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, idempotencyKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		s.log.Warn("Idempotency lookup failed", "error", err)
		return nil, false
	}

	var cached CachedResponse
	if err := json.Unmarshal(data, &cached); err != nil {
		s.log.Warn("Discarding unreadable idempotency entry", "error", err)
		return nil, false
	}
	return &cached, true
}

func (s *RedisIdempotencyStore) Set(key string, response *CachedResponse) {
	response.CreatedAt = time.Now()
	data, err := json.Marshal(response)
	if err != nil {
		s.log.Warn("Failed to encode idempotency entry", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisStoreTimeout)
	defer cancel()

	if err := s.client.Set(ctx, idempotencyKeyPrefix+key, data, s.ttl).Err(); err != nil {
		s.log.Warn("Failed to store idempotency entry", "error", err)
	}
}

// Stop is a no-op; the client is owned and closed by the caller.
func (s *RedisIdempotencyStore) Stop() {}
