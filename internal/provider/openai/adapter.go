// Package openai provides an adapter for the OpenAI API using the official SDK.
// It sends the system instruction and the user prompt as a two-message chat and returns the
// first choice as raw completion text; cost is computed by the domain cost calculator.
package openai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/davidbz/kiln/internal/domain"
	"github.com/davidbz/kiln/internal/observability"
)

const providerName = "openai"

// Provider implements the domain.Provider interface for OpenAI.
type Provider struct {
	client      openai.Client
	name        string
	models      map[string]bool
	jsonMode    bool
	temperature float64
}

// NewProvider creates a new OpenAI provider.
func NewProvider(config Config) (*Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(config.MaxRetries),
	}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(time.Duration(config.Timeout)*time.Second))
	}

	models := config.Models
	if len(models) == 0 {
		models = DefaultModels()
	}

	return &Provider{
		client:      openai.NewClient(opts...),
		name:        providerName,
		models:      buildModelSet(models),
		jsonMode:    config.JSONMode,
		temperature: config.Temperature,
	}, nil
}

// Complete sends a chat completion request and returns the first choice's text.
func (p *Provider) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.RawCompletion, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling OpenAI API")

	resp, err := p.client.Chat.Completions.New(ctx, p.toSDKParams(req))
	if err != nil {
		logger.Error("OpenAI API call failed", observability.Error(err))

		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &domain.CompletionFailure{
				Status:  apiErr.StatusCode,
				Message: apiErr.Message,
				Details: apiErr.Code,
			}
		}
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	logger.Debug("OpenAI API call succeeded",
		observability.Int("prompt_tokens", int(resp.Usage.PromptTokens)),
		observability.Int("completion_tokens", int(resp.Usage.CompletionTokens)),
	)

	return p.toRawCompletion(resp), nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// IsModelSupported checks if the provider supports the given model.
func (p *Provider) IsModelSupported(_ context.Context, model string) bool {
	return p.models[model]
}

// SupportedModels returns the served models in name order.
func (p *Provider) SupportedModels(_ context.Context) []string {
	models := make([]string, 0, len(p.models))
	for model := range p.models {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}

// toSDKParams converts the domain request to a system + user chat.
func (p *Provider) toSDKParams(req *domain.CompletionRequest) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	}
	if p.jsonMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	if p.temperature >= 0 {
		params.Temperature = openai.Float(p.temperature)
	}
	return params
}

func (p *Provider) toRawCompletion(resp *openai.ChatCompletion) *domain.RawCompletion {
	text := ""
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}

	return &domain.RawCompletion{
		ID:       resp.ID,
		Model:    string(resp.Model),
		Provider: p.name,
		Text:     text,
		Usage: domain.Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
		FinishTime: time.Now(),
	}
}
