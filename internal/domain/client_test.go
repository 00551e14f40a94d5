package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/davidbz/kiln/internal/domain"
	"github.com/davidbz/kiln/internal/mocks"
)

func newCostCalculator(t *testing.T) domain.CostCalculator {
	t.Helper()

	prices := domain.NewPriceTable()
	require.NoError(t, prices.RegisterPricing(context.Background(), "gpt-4o-mini", domain.ModelPrice{
		InputPerMillion:  1000,
		OutputPerMillion: 2000,
	}))
	return domain.NewTableCostCalculator(prices)
}

func TestCompletionClient_Complete(t *testing.T) {
	t.Run("should reject an empty prompt before any call", func(t *testing.T) {
		registry := mocks.NewMockProviderRegistry(t)
		ledger := domain.NewUsageLedger(nil, nil)
		client := domain.NewCompletionClient(registry, newCostCalculator(t), ledger)

		raw, err := client.Complete(context.Background(), domain.PromptRequest{
			UserPrompt: "   ",
			Model:      "gpt-4o-mini",
		})

		require.ErrorIs(t, err, domain.ErrInvalidRequest)
		require.Nil(t, raw)
		require.True(t, ledger.Snapshot().IsZero())
	})

	t.Run("should record usage and cost on success", func(t *testing.T) {
		registry := mocks.NewMockProviderRegistry(t)
		provider := mocks.NewMockProvider(t)
		ledger := domain.NewUsageLedger(nil, nil)
		client := domain.NewCompletionClient(registry, newCostCalculator(t), ledger)

		registry.EXPECT().GetByModel(mock.Anything, "gpt-4o-mini").Return(provider, nil)
		provider.EXPECT().
			Complete(mock.Anything, &domain.CompletionRequest{
				Model:        "gpt-4o-mini",
				SystemPrompt: "system",
				Prompt:       "entry",
				Metadata:     map[string]string{"domain": "rank"},
			}).
			Return(&domain.RawCompletion{
				Model: "gpt-4o-mini-2024-07-18",
				Text:  "{}",
				Usage: domain.Usage{InputTokens: 1000, OutputTokens: 500, TotalTokens: 1500},
			}, nil)

		raw, err := client.Complete(context.Background(), domain.PromptRequest{
			SystemPrompt: "system",
			UserPrompt:   "entry",
			Model:        "gpt-4o-mini",
			Domain:       domain.DomainRank,
		})

		require.NoError(t, err)
		require.Equal(t, "{}", raw.Text)

		snapshot := ledger.Snapshot()
		require.Equal(t, 1500, snapshot.TotalTokens)
		require.Equal(t, 1, snapshot.RequestCount)
		require.Equal(t, 0, snapshot.ProposalCount)
		require.InDelta(t, 2.0, snapshot.Cost, 0.0001)
	})

	t.Run("should surface provider failure without recording usage", func(t *testing.T) {
		registry := mocks.NewMockProviderRegistry(t)
		provider := mocks.NewMockProvider(t)
		ledger := domain.NewUsageLedger(nil, nil)
		client := domain.NewCompletionClient(registry, newCostCalculator(t), ledger)

		failure := &domain.CompletionFailure{Status: 401, Message: "unauthorized"}
		registry.EXPECT().GetByModel(mock.Anything, "gpt-4o-mini").Return(provider, nil)
		provider.EXPECT().Complete(mock.Anything, mock.Anything).Return(nil, failure)
		provider.EXPECT().Name().Return("proxy")

		raw, err := client.Complete(context.Background(), domain.PromptRequest{
			UserPrompt: "entry",
			Model:      "gpt-4o-mini",
		})

		require.Nil(t, raw)
		var got *domain.CompletionFailure
		require.ErrorAs(t, err, &got)
		require.Equal(t, 401, got.Status)
		require.True(t, ledger.Snapshot().IsZero())
	})

	t.Run("should fail when no provider serves the model", func(t *testing.T) {
		registry := mocks.NewMockProviderRegistry(t)
		client := domain.NewCompletionClient(registry, newCostCalculator(t), domain.NewUsageLedger(nil, nil))

		registry.EXPECT().
			GetByModel(mock.Anything, "unknown").
			Return(nil, errors.New("no provider found for model: unknown"))

		_, err := client.Complete(context.Background(), domain.PromptRequest{
			UserPrompt: "entry",
			Model:      "unknown",
		})

		require.Error(t, err)
		require.Contains(t, err.Error(), "provider routing failed")
	})
}

func TestCompletionClient_ProposalSync(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("sync failure does not affect the completion", func(t *testing.T) {
		registry := mocks.NewMockProviderRegistry(t)
		provider := mocks.NewMockProvider(t)
		syncer := mocks.NewMockUsageSyncer(t)
		ledger := domain.NewUsageLedger(syncer, nil)
		client := domain.NewCompletionClient(registry, newCostCalculator(t), ledger)

		registry.EXPECT().GetByModel(mock.Anything, "gpt-4o-mini").Return(provider, nil)
		provider.EXPECT().Complete(mock.Anything, mock.Anything).Return(&domain.RawCompletion{
			Text:  "{}",
			Usage: domain.Usage{InputTokens: 3, OutputTokens: 4, TotalTokens: 7},
		}, nil)
		syncer.EXPECT().
			Sync(mock.Anything, mock.MatchedBy(func(s domain.UsageSnapshot) bool {
				return s.ProposalCount == 1 && s.TotalTokens == 7 && s.RequestCount == 1
			})).
			Return(errors.New("sync endpoint down"))

		raw, err := client.Complete(context.Background(), domain.PromptRequest{
			UserPrompt: "entry",
			Model:      "gpt-4o-mini",
			Proposal:   true,
		})
		ledger.Wait()

		require.NoError(t, err)
		require.Equal(t, "{}", raw.Text)
		require.Equal(t, 1, ledger.Snapshot().ProposalCount)
	})

	t.Run("successful sync drains the ledger", func(t *testing.T) {
		registry := mocks.NewMockProviderRegistry(t)
		provider := mocks.NewMockProvider(t)
		syncer := mocks.NewMockUsageSyncer(t)
		ledger := domain.NewUsageLedger(syncer, nil)
		client := domain.NewCompletionClient(registry, newCostCalculator(t), ledger)

		registry.EXPECT().GetByModel(mock.Anything, "gpt-4o-mini").Return(provider, nil)
		provider.EXPECT().Complete(mock.Anything, mock.Anything).Return(&domain.RawCompletion{
			Text:  "{}",
			Usage: domain.Usage{TotalTokens: 7},
		}, nil)
		syncer.EXPECT().Sync(mock.Anything, mock.Anything).Return(nil)

		_, err := client.Complete(context.Background(), domain.PromptRequest{
			UserPrompt: "entry",
			Model:      "gpt-4o-mini",
			Proposal:   true,
		})
		ledger.Wait()

		require.NoError(t, err)
		require.True(t, ledger.Snapshot().IsZero())
	})
}
