// Package redis stores encoded domain results in Redis hashes keyed by request fingerprint.
// Redis owns expiry (per-key TTL) and size (maxmemory policy).
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/kiln/internal/domain"
	"github.com/davidbz/kiln/internal/observability"
)

// DefaultKeyPrefix namespaces result hashes.
const DefaultKeyPrefix = "kiln:result:"

const (
	fieldData     = "data"
	fieldStoredAt = "stored_at"
)

// ResultStore implements domain.ResultCache on Redis.
type ResultStore struct {
	client    redis.Cmdable
	keyPrefix string
}

// NewResultStore creates a Redis result store. An empty prefix selects DefaultKeyPrefix.
func NewResultStore(client redis.Cmdable, keyPrefix string) *ResultStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &ResultStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Key returns the Redis key for fingerprint.
func (s *ResultStore) Key(fingerprint string) string {
	return s.keyPrefix + fingerprint
}

// Get returns the stored result, or domain.ErrCacheMiss.
func (s *ResultStore) Get(ctx context.Context, fingerprint string) ([]byte, error) {
	data, err := s.client.HGet(ctx, s.Key(fingerprint), fieldData).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		observability.FromContext(ctx).Error("result lookup failed", observability.Error(err))
		return nil, fmt.Errorf("failed to read result: %w", err)
	}

	return data, nil
}

// Set stores data under fingerprint for ttl. A zero ttl keeps the entry until eviction.
func (s *ResultStore) Set(ctx context.Context, fingerprint string, data []byte, ttl time.Duration) error {
	logger := observability.FromContext(ctx)
	key := s.Key(fingerprint)

	pipe := s.client.TxPipeline()

	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		fieldData, data,
		fieldStoredAt, time.Now().Unix(),
	)

	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}

	if _, execErr := pipe.Exec(ctx); execErr != nil {
		logger.Error("result store failed", observability.Error(execErr))
		return fmt.Errorf("failed to store result: %w", execErr)
	}

	logger.Debug("result stored",
		observability.Int("data_size", len(data)),
		observability.Duration("ttl", ttl))
	return nil
}
