package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/davidbz/kiln/internal/observability"
)

const tokensPerMillion = 1_000_000.0

// ModelPrice is the list price of a model in USD per million tokens.
type ModelPrice struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// Cost returns the USD cost of usage at this price.
func (p ModelPrice) Cost(usage Usage) float64 {
	return float64(usage.InputTokens)/tokensPerMillion*p.InputPerMillion +
		float64(usage.OutputTokens)/tokensPerMillion*p.OutputPerMillion
}

// Prices maps model names to their price.
type Prices map[string]ModelPrice

// CostCalculator calculates cost based on token usage.
type CostCalculator interface {
	Calculate(ctx context.Context, model string, usage Usage) (float64, error)
}

// PricingRegistry maintains pricing information for models.
type PricingRegistry interface {
	GetPricing(ctx context.Context, model string) (ModelPrice, error)
	RegisterPricing(ctx context.Context, model string, price ModelPrice) error
}

// ErrPriceNotFound is returned when no registered model matches.
var ErrPriceNotFound = errors.New("price not found")

// RegisterPrices registers every entry of prices, in name order so failures are reproducible.
func RegisterPrices(ctx context.Context, registry PricingRegistry, prices Prices) error {
	models := make([]string, 0, len(prices))
	for model := range prices {
		models = append(models, model)
	}
	sort.Strings(models)

	for _, model := range models {
		if err := registry.RegisterPricing(ctx, model, prices[model]); err != nil {
			return fmt.Errorf("failed to register pricing for model %s: %w", model, err)
		}
	}
	return nil
}

// PriceTable is an in-memory PricingRegistry.
type PriceTable struct {
	mu     sync.RWMutex
	prices Prices
}

func NewPriceTable() *PriceTable {
	return &PriceTable{prices: make(Prices)}
}

// GetPricing looks up model. Dated snapshots reported by providers
// ("gpt-4o-mini-2024-07-18") resolve to the longest registered prefix.
func (t *PriceTable) GetPricing(_ context.Context, model string) (ModelPrice, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if price, ok := t.prices[model]; ok {
		return price, nil
	}

	best := ""
	for registered := range t.prices {
		if strings.HasPrefix(model, registered+"-") && len(registered) > len(best) {
			best = registered
		}
	}
	if best == "" {
		return ModelPrice{}, fmt.Errorf("%w: %s", ErrPriceNotFound, model)
	}
	return t.prices[best], nil
}

func (t *PriceTable) RegisterPricing(_ context.Context, model string, price ModelPrice) error {
	if model == "" {
		return errors.New("model cannot be empty")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.prices[model] = price
	return nil
}

// TableCostCalculator prices usage from a PricingRegistry. Unknown models cost nothing.
type TableCostCalculator struct {
	registry PricingRegistry
}

func NewTableCostCalculator(registry PricingRegistry) *TableCostCalculator {
	return &TableCostCalculator{registry: registry}
}

func (c *TableCostCalculator) Calculate(ctx context.Context, model string, usage Usage) (float64, error) {
	if model == "" {
		return 0, errors.New("model cannot be empty")
	}

	price, err := c.registry.GetPricing(ctx, model)
	if errors.Is(err, ErrPriceNotFound) {
		observability.FromContext(ctx).Debug("no price for model, recording zero cost",
			observability.String("model", model))
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return price.Cost(usage), nil
}
