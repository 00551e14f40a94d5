// Package advisor implements the feature-level callers: one method per domain that builds the
// prompt, consults the result cache and the in-flight registry, runs the orchestrator and
// turns every failure into an explicitly marked fallback.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/davidbz/kiln/internal/domain"
	"github.com/davidbz/kiln/internal/fallback"
	"github.com/davidbz/kiln/internal/normalize"
	"github.com/davidbz/kiln/internal/observability"
)

// ErrDuplicateRequest rejects a request whose fingerprint is already in flight.
var ErrDuplicateRequest = errors.New("identical request already in flight")

// Config contains feature caller configuration.
type Config struct {
	DefaultModel string        `env:"COMPLETION_MODEL" envDefault:"gpt-4o-mini"`
	CacheTTL     time.Duration `env:"CACHE_TTL"        envDefault:"24h"`
}

// Query is one feature request.
type Query struct {
	Entry string

	// Model overrides the configured default model.
	Model string

	// Force skips the cache read; the fresh result still replaces the cached one.
	Force bool

	// Proposal marks a billable action and triggers a usage sync.
	Proposal bool
}

// Meta describes how a result was produced.
type Meta struct {
	Fingerprint string
	Cached      bool
	Stale       bool
}

// Advisor runs the six feature requests.
type Advisor struct {
	orchestrator *domain.Orchestrator
	cache        domain.ResultCache
	inflight     *domain.InFlight
	publisher    domain.EventPublisher
	config       Config
}

// NewAdvisor creates an advisor (DI constructor). cache may be nil.
func NewAdvisor(
	orchestrator *domain.Orchestrator,
	cache domain.ResultCache,
	inflight *domain.InFlight,
	publisher domain.EventPublisher,
	config Config,
) *Advisor {
	return &Advisor{
		orchestrator: orchestrator,
		cache:        cache,
		inflight:     inflight,
		publisher:    publisher,
		config:       config,
	}
}

// Rank orders all ten patterns by relevance to the entry.
func (a *Advisor) Rank(ctx context.Context, q Query) (domain.Result[domain.Ranking], Meta, error) {
	return execute(ctx, a, q, feature[domain.Ranking]{
		domain:   domain.DomainRank,
		parse:    normalize.ParseRanking,
		fallback: fallback.Ranking,
	})
}

// Detail explains each candidate pattern. Candidates must be pattern numbers; repeats are
// dropped.
func (a *Advisor) Detail(ctx context.Context, q Query, candidates []int) (domain.Result[domain.DetailSet], Meta, error) {
	candidates = normalize.UniqueCandidates(candidates)
	if len(candidates) == 0 {
		return domain.Result[domain.DetailSet]{}, Meta{}, fmt.Errorf("%w: at least one candidate is required", domain.ErrInvalidRequest)
	}
	for _, c := range candidates {
		if c < 1 || c > fallback.PatternCount {
			return domain.Result[domain.DetailSet]{}, Meta{}, fmt.Errorf("%w: candidate %d out of range 1..%d",
				domain.ErrInvalidRequest, c, fallback.PatternCount)
		}
	}

	return execute(ctx, a, q, feature[domain.DetailSet]{
		domain:     domain.DomainDetail,
		candidates: candidates,
		parse:      normalize.ParseDetails(candidates),
		fallback: func() domain.DetailSet {
			return fallback.Details(candidates)
		},
	})
}

// Alternatives offers one reframed thought per technique.
func (a *Advisor) Alternatives(ctx context.Context, q Query) (domain.Result[domain.AlternativeSet], Meta, error) {
	return execute(ctx, a, q, feature[domain.AlternativeSet]{
		domain:   domain.DomainAlternatives,
		parse:    normalize.ParseAlternatives,
		fallback: fallback.Alternatives,
	})
}

// Context breaks the entry down into a structured context.
func (a *Advisor) Context(ctx context.Context, q Query) (domain.Result[domain.StructuredContext], Meta, error) {
	return execute(ctx, a, q, feature[domain.StructuredContext]{
		domain:   domain.DomainContext,
		parse:    normalize.ParseContext,
		fallback: fallback.Context,
	})
}

// Scenario replays the entry as a scenario graph.
func (a *Advisor) Scenario(ctx context.Context, q Query) (domain.Result[domain.ScenarioGraph], Meta, error) {
	return execute(ctx, a, q, feature[domain.ScenarioGraph]{
		domain:   domain.DomainScenario,
		parse:    normalize.ParseScenario,
		fallback: fallback.Scenario,
	})
}

// Thoughts lists automatic, balanced and coping thoughts.
func (a *Advisor) Thoughts(ctx context.Context, q Query) (domain.Result[domain.ThoughtSet], Meta, error) {
	return execute(ctx, a, q, feature[domain.ThoughtSet]{
		domain:   domain.DomainThoughts,
		parse:    normalize.ParseThoughts,
		fallback: fallback.ThoughtSet,
	})
}

// Cancel forgets the in-flight request with fingerprint. Its result is still returned to
// its caller when it arrives but is treated as stale and not cached.
func (a *Advisor) Cancel(fingerprint string) bool {
	if !a.inflight.Active(fingerprint) {
		return false
	}
	a.inflight.Evict(fingerprint)
	return true
}

type feature[T any] struct {
	domain     domain.Domain
	candidates []int
	parse      domain.ParseFunc[domain.Result[T]]
	fallback   func() T
}

// cachedResult is the stored form of a Result: the partial marker is kept next to the value
// so a degraded result stays degraded when served from the cache.
type cachedResult struct {
	Value    json.RawMessage `json:"value"`
	Severity domain.Severity `json:"severity"`
}

func execute[T any](ctx context.Context, a *Advisor, q Query, f feature[T]) (domain.Result[T], Meta, error) {
	entry := strings.TrimSpace(q.Entry)
	if entry == "" {
		return domain.Result[T]{}, Meta{}, fmt.Errorf("%w: entry is empty", domain.ErrInvalidRequest)
	}

	model := q.Model
	if model == "" {
		model = a.config.DefaultModel
	}

	req := domain.PromptRequest{
		SystemPrompt: SystemPrompt(f.domain),
		UserPrompt:   UserPrompt(f.domain, entry, f.candidates),
		Model:        model,
		Domain:       f.domain,
		Proposal:     q.Proposal,
	}

	fingerprint := domain.Fingerprint(req, f.candidates)
	meta := Meta{Fingerprint: fingerprint}

	ctx = observability.WithFingerprint(ctx, fingerprint)
	ctx = observability.WithDomain(ctx, string(f.domain))
	logger := observability.FromContext(ctx)

	if !q.Force {
		if cached, ok := lookup[T](ctx, a.cache, fingerprint); ok {
			logger.Debug("serving cached result")
			meta.Cached = true
			return cached, meta, nil
		}
	}

	ticket, inserted := a.inflight.Insert(fingerprint)
	if !inserted {
		logger.Info("dropping duplicate request")
		return domain.Result[T]{}, meta, ErrDuplicateRequest
	}

	result, cacheable := complete(ctx, a, req, f)

	if !a.inflight.Resolve(fingerprint, ticket) {
		meta.Stale = true
		a.publish(ctx, observability.EventStaleResult, map[string]interface{}{
			"domain":      string(f.domain),
			"fingerprint": fingerprint,
		})
		return result, meta, nil
	}

	if cacheable {
		store(ctx, a.cache, fingerprint, result, a.config.CacheTTL)
	}

	return result, meta, nil
}

// complete runs the orchestrator and substitutes the fallback on either stage error. The
// second return reports whether the result came from an answered completion; call-stage
// failures are transient and are not cached.
func complete[T any](ctx context.Context, a *Advisor, req domain.PromptRequest, f feature[T]) (domain.Result[T], bool) {
	outcome, err := domain.Run(ctx, a.orchestrator, req, f.parse)
	if err == nil {
		result := outcome.Value
		if result.Partial() {
			a.publishDegraded(ctx, req.Domain, "normalize", result.Severity())
		}
		return result, true
	}

	result := domain.MarkPartial(domain.NewResult(f.fallback()), domain.SeverityWhole)

	var parseErr *domain.ParseStageError
	if errors.As(err, &parseErr) {
		observability.FromContext(ctx).Warn("completion carried no structured object, using fallback",
			observability.String("snippet", parseErr.Snippet))
		a.publishDegraded(ctx, req.Domain, "parse", result.Severity())
		return result, true
	}

	observability.FromContext(ctx).Warn("completion failed, using fallback", observability.Error(err))
	a.publishDegraded(ctx, req.Domain, "call", result.Severity())
	return result, false
}

func (a *Advisor) publishDegraded(ctx context.Context, d domain.Domain, stage string, severity domain.Severity) {
	a.publish(ctx, observability.EventResultDegraded, map[string]interface{}{
		"domain":      string(d),
		"stage":       stage,
		"severity":    severity.String(),
		"fingerprint": observability.GetFingerprint(ctx),
	})
}

func (a *Advisor) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if a.publisher == nil {
		return
	}
	a.publisher.Publish(ctx, eventType, data)
}

func lookup[T any](ctx context.Context, cache domain.ResultCache, fingerprint string) (domain.Result[T], bool) {
	if cache == nil {
		return domain.Result[T]{}, false
	}

	logger := observability.FromContext(ctx)

	data, err := cache.Get(ctx, fingerprint)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Warn("result cache lookup failed", observability.Error(err))
		}
		return domain.Result[T]{}, false
	}

	var stored cachedResult
	if err = json.Unmarshal(data, &stored); err != nil {
		logger.Warn("discarding undecodable cached result", observability.Error(err))
		return domain.Result[T]{}, false
	}

	var value T
	if err = json.Unmarshal(stored.Value, &value); err != nil {
		logger.Warn("discarding undecodable cached value", observability.Error(err))
		return domain.Result[T]{}, false
	}

	return domain.MarkPartial(domain.NewResult(value), stored.Severity), true
}

func store[T any](ctx context.Context, cache domain.ResultCache, fingerprint string, result domain.Result[T], ttl time.Duration) {
	if cache == nil {
		return
	}

	logger := observability.FromContext(ctx)

	value, err := json.Marshal(result.Value)
	if err != nil {
		logger.Warn("result not cached", observability.Error(err))
		return
	}

	data, err := json.Marshal(cachedResult{Value: value, Severity: result.Severity()})
	if err != nil {
		logger.Warn("result not cached", observability.Error(err))
		return
	}

	if err = cache.Set(ctx, fingerprint, data, ttl); err != nil {
		logger.Warn("result cache store failed", observability.Error(err))
	}
}
