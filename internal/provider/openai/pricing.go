package openai

import (
	"context"

	"github.com/davidbz/kiln/internal/domain"
)

// Prices lists the per-million-token rates for DefaultModels.
func Prices() domain.Prices {
	return domain.Prices{
		"gpt-4o":       {InputPerMillion: 2.5, OutputPerMillion: 10},
		"gpt-4o-mini":  {InputPerMillion: 0.15, OutputPerMillion: 0.6},
		"gpt-4.1":      {InputPerMillion: 2, OutputPerMillion: 8},
		"gpt-4.1-mini": {InputPerMillion: 0.4, OutputPerMillion: 1.6},
	}
}

// RegisterPricing registers OpenAI model pricing with the registry.
func RegisterPricing(ctx context.Context, registry domain.PricingRegistry) error {
	return domain.RegisterPrices(ctx, registry, Prices())
}
