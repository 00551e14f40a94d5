// Package redis accumulates usage counters in a Redis hash.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/kiln/internal/domain"
	"github.com/davidbz/kiln/internal/observability"
)

// DefaultKey is the hash receiving usage counters.
const DefaultKey = "kiln:usage"

// Syncer implements domain.UsageSyncer with HINCRBY counters.
type Syncer struct {
	client redis.Cmdable
	key    string
}

// NewSyncer creates a Redis usage syncer. An empty key selects DefaultKey.
func NewSyncer(client redis.Cmdable, key string) *Syncer {
	if key == "" {
		key = DefaultKey
	}
	return &Syncer{
		client: client,
		key:    key,
	}
}

// Sync adds usage to the counters in one transaction.
func (s *Syncer) Sync(ctx context.Context, usage domain.UsageSnapshot) error {
	pipe := s.client.TxPipeline()

	pipe.HIncrBy(ctx, s.key, "input_tokens", int64(usage.InputTokens))
	pipe.HIncrBy(ctx, s.key, "output_tokens", int64(usage.OutputTokens))
	pipe.HIncrBy(ctx, s.key, "total_tokens", int64(usage.TotalTokens))
	pipe.HIncrBy(ctx, s.key, "request_count", int64(usage.RequestCount))
	pipe.HIncrBy(ctx, s.key, "note_proposal_count", int64(usage.ProposalCount))
	pipe.HIncrByFloat(ctx, s.key, "cost", usage.Cost)

	if _, err := pipe.Exec(ctx); err != nil {
		observability.FromContext(ctx).Error("usage counter update failed", observability.Error(err))
		return fmt.Errorf("failed to update usage counters: %w", err)
	}

	return nil
}
