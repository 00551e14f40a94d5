package domain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/davidbz/kiln/internal/observability"
)

const defaultSyncTimeout = 10 * time.Second

// UsageLedger accumulates token usage across calls until it is flushed or reset.
// It is owned by whoever constructs it and injected into the CompletionClient.
type UsageLedger struct {
	mu          sync.Mutex
	flushMu     sync.Mutex
	usage       UsageSnapshot
	generation  uint64
	syncer      UsageSyncer
	publisher   EventPublisher
	syncTimeout time.Duration
	background  sync.WaitGroup
}

// NewUsageLedger creates a ledger. A nil syncer turns Flush into a no-op.
func NewUsageLedger(syncer UsageSyncer, publisher EventPublisher) *UsageLedger {
	return &UsageLedger{
		syncer:      syncer,
		publisher:   publisher,
		syncTimeout: defaultSyncTimeout,
	}
}

// SetSyncTimeout bounds each background sync.
func (l *UsageLedger) SetSyncTimeout(timeout time.Duration) {
	if timeout <= 0 {
		return
	}
	l.mu.Lock()
	l.syncTimeout = timeout
	l.mu.Unlock()
}

// Record adds one request's usage and cost.
func (l *UsageLedger) Record(usage Usage, cost float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.usage.InputTokens += usage.InputTokens
	l.usage.OutputTokens += usage.OutputTokens
	l.usage.TotalTokens += usage.TotalTokens
	l.usage.RequestCount++
	l.usage.Cost += cost
}

// RecordProposal counts one billable proposal action.
func (l *UsageLedger) RecordProposal() {
	l.mu.Lock()
	l.usage.ProposalCount++
	l.mu.Unlock()
}

// Snapshot returns the current totals.
func (l *UsageLedger) Snapshot() UsageSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.usage
}

// Reset discards all accumulated usage. A flush in flight keeps what it sent but no longer
// subtracts it.
func (l *UsageLedger) Reset() {
	l.mu.Lock()
	l.usage = UsageSnapshot{}
	l.generation++
	l.mu.Unlock()
}

// Flush pushes the current totals to the syncer. On success the flushed amounts are
// subtracted, so usage recorded while the sync was in flight is kept for the next flush.
// Flushes run one at a time.
func (l *UsageLedger) Flush(ctx context.Context) error {
	if l.syncer == nil {
		return nil
	}

	l.flushMu.Lock()
	defer l.flushMu.Unlock()

	l.mu.Lock()
	snapshot := l.usage
	generation := l.generation
	l.mu.Unlock()

	if snapshot.IsZero() {
		return nil
	}

	if err := l.syncer.Sync(ctx, snapshot); err != nil {
		return fmt.Errorf("usage sync failed: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if generation != l.generation {
		return nil
	}
	l.usage.InputTokens -= snapshot.InputTokens
	l.usage.OutputTokens -= snapshot.OutputTokens
	l.usage.TotalTokens -= snapshot.TotalTokens
	l.usage.RequestCount -= snapshot.RequestCount
	l.usage.ProposalCount -= snapshot.ProposalCount
	l.usage.Cost -= snapshot.Cost

	return nil
}

// FlushInBackground starts a fire-and-forget flush. Failures are logged and published,
// never returned. The sync outlives ctx cancellation but not the sync timeout.
func (l *UsageLedger) FlushInBackground(ctx context.Context) {
	if l.syncer == nil {
		return
	}

	l.mu.Lock()
	timeout := l.syncTimeout
	l.mu.Unlock()

	syncCtx := context.WithoutCancel(ctx)

	l.background.Add(1)
	go func() {
		defer l.background.Done()

		ctx, cancel := context.WithTimeout(syncCtx, timeout)
		defer cancel()

		if err := l.Flush(ctx); err != nil {
			observability.FromContext(ctx).Warn("background usage sync failed",
				observability.Error(err))
			if l.publisher != nil {
				l.publisher.Publish(ctx, observability.EventUsageSyncFailed, map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}()
}

// Wait blocks until all background flushes have returned.
func (l *UsageLedger) Wait() {
	l.background.Wait()
}
