// Package cache provides the upload fingerprint stores backing duplicate
// detection, in Redis for shared deployments and in memory for tests and
// single-node setups.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gstboard/backend/internal/domain/shared"
)

// RedisDedupStore implements DedupStore on Redis. Suitable when several
// instances serve uploads and must share duplicate state.
type RedisDedupStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisDedupStore connects to Redis and verifies the connection
func NewRedisDedupStore(cfg RedisConfig) (*RedisDedupStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisDedupStore{
		client:    client,
		keyPrefix: "upload:checksum:",
	}, nil
}

// NewRedisDedupStoreWithClient wraps an existing client, useful when a
// client is shared across components
func NewRedisDedupStoreWithClient(client *redis.Client, keyPrefix string) *RedisDedupStore {
	if keyPrefix == "" {
		keyPrefix = "upload:checksum:"
	}
	return &RedisDedupStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// MarkSeen records a fingerprint with a TTL using SETNX, so concurrent
// uploads of the same file race safely and exactly one wins.
func (s *RedisDedupStore) MarkSeen(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error) {
	key := s.keyPrefix + fingerprint

	result, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark fingerprint: %w", err)
	}

	return result, nil
}

// WasSeen checks whether a fingerprint is currently recorded
func (s *RedisDedupStore) WasSeen(ctx context.Context, fingerprint string) (bool, error) {
	key := s.keyPrefix + fingerprint

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check fingerprint: %w", err)
	}

	return exists > 0, nil
}

// Close closes the Redis client
func (s *RedisDedupStore) Close() error {
	return s.client.Close()
}

var _ shared.DedupStore = (*RedisDedupStore)(nil)
