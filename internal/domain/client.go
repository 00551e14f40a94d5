package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/davidbz/kiln/internal/observability"
)

// CompletionClient performs the network call to the generative endpoint and records usage.
// It never retries and never substitutes content.
type CompletionClient struct {
	registry       ProviderRegistry
	costCalculator CostCalculator
	ledger         *UsageLedger
}

// NewCompletionClient creates a new completion client (DI constructor).
func NewCompletionClient(
	registry ProviderRegistry,
	costCalculator CostCalculator,
	ledger *UsageLedger,
) *CompletionClient {
	return &CompletionClient{
		registry:       registry,
		costCalculator: costCalculator,
		ledger:         ledger,
	}
}

// Complete sends req to the provider serving req.Model.
func (c *CompletionClient) Complete(ctx context.Context, req PromptRequest) (*RawCompletion, error) {
	if strings.TrimSpace(req.UserPrompt) == "" {
		return nil, fmt.Errorf("%w: prompt cannot be empty", ErrInvalidRequest)
	}

	if req.Model == "" {
		return nil, fmt.Errorf("%w: model cannot be empty", ErrInvalidRequest)
	}

	logger := observability.FromContext(ctx)

	provider, err := c.registry.GetByModel(ctx, req.Model)
	if err != nil {
		return nil, fmt.Errorf("provider routing failed: %w", err)
	}

	raw, err := provider.Complete(ctx, &CompletionRequest{
		Model:        req.Model,
		SystemPrompt: req.SystemPrompt,
		Prompt:       req.UserPrompt,
		Metadata: map[string]string{
			"domain": string(req.Domain),
		},
	})
	if err != nil {
		logger.Warn("completion failed",
			observability.String("provider", provider.Name()),
			observability.Error(err))
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	c.recordUsage(ctx, req, raw)

	return raw, nil
}

func (c *CompletionClient) recordUsage(ctx context.Context, req PromptRequest, raw *RawCompletion) {
	if c.ledger == nil {
		return
	}

	var cost float64
	if c.costCalculator != nil {
		model := raw.Model
		if model == "" {
			model = req.Model
		}
		cost, _ = c.costCalculator.Calculate(ctx, model, raw.Usage)
	}

	c.ledger.Record(raw.Usage, cost)

	observability.FromContext(ctx).Debug("usage recorded",
		observability.Int("input_tokens", raw.Usage.InputTokens),
		observability.Int("output_tokens", raw.Usage.OutputTokens),
		observability.Float64("cost", cost))

	if req.Proposal {
		c.ledger.RecordProposal()
		c.ledger.FlushInBackground(ctx)
	}
}
