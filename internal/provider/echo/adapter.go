// Package echo is an offline provider for development. It answers with the entry section of
// the prompt, so submitting a JSON document as the entry drives the whole normalization
// pipeline without a network call.
package echo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davidbz/kiln/internal/domain"
	"github.com/davidbz/kiln/internal/observability"
)

const (
	providerName = "echo"
	modelName    = "echo4"

	entryMarker = "Entry:\n"
)

type Provider struct{}

func NewProvider() *Provider {
	return &Provider{}
}

// Complete replies with the text after the last entry marker, or the whole prompt when
// there is none. Tokens are counted as whitespace-separated words.
func (p *Provider) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.RawCompletion, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}
	if req.Model != modelName {
		return nil, fmt.Errorf("model %s is not supported by echo provider", req.Model)
	}

	reply := echoed(req.Prompt)
	usage := domain.Usage{
		InputTokens:  words(req.SystemPrompt) + words(req.Prompt),
		OutputTokens: words(reply),
	}
	usage.TotalTokens = usage.InputTokens + usage.OutputTokens

	observability.FromContext(ctx).Debug("echo completed",
		observability.Int("input_tokens", usage.InputTokens),
		observability.Int("output_tokens", usage.OutputTokens))

	return &domain.RawCompletion{
		ID:         "echo-" + uuid.NewString(),
		Model:      modelName,
		Provider:   providerName,
		Text:       reply,
		Usage:      usage,
		FinishTime: time.Now(),
	}, nil
}

func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) IsModelSupported(_ context.Context, model string) bool {
	return model == modelName
}

func (p *Provider) SupportedModels(_ context.Context) []string {
	return []string{modelName}
}

func echoed(prompt string) string {
	if i := strings.LastIndex(prompt, entryMarker); i >= 0 {
		return prompt[i+len(entryMarker):]
	}
	return prompt
}

func words(s string) int {
	return len(strings.Fields(s))
}
