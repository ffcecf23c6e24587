package middleware

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisWindowStore keeps fixed-window counters in Redis so the ceilings hold
// across replicas. INCR starts the window; the first hit sets the expiry.
type RedisWindowStore struct {
	client *redis.Client
	prefix string
}

// RedisStoreConfig configures the Redis-backed window store.
type RedisStoreConfig struct {
	Addr     string
	Password string
	TLS      bool
}

// NewRedisWindowStore connects a window store to Redis.
func NewRedisWindowStore(cfg RedisStoreConfig) *RedisWindowStore {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return &RedisWindowStore{
		client: redis.NewClient(opts),
		prefix: "ratelimit:",
	}
}

// Incr implements WindowStore.
func (s *RedisWindowStore) Incr(ctx context.Context, key string, window time.Duration) (int, error) {
	full := s.prefix + key
	count, err := s.client.Incr(ctx, full).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, full, window).Err(); err != nil {
			return 0, err
		}
	}
	return int(count), nil
}

// Close releases the underlying Redis connection.
func (s *RedisWindowStore) Close() error {
	return s.client.Close()
}
