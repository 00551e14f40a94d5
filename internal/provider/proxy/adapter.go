// Package proxy provides the adapter for the hosted completion proxy: a single endpoint that
// accepts a prompt with its system instruction and returns plain text plus token usage.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/davidbz/kiln/internal/domain"
	"github.com/davidbz/kiln/internal/observability"
)

const (
	providerName = "proxy"

	// maxErrorBody bounds how much of a failed response is read.
	maxErrorBody = 64 << 10
)

type completionRequest struct {
	Prompt       string `json:"prompt"`
	SystemPrompt string `json:"systemPrompt"`
	Model        string `json:"model"`
	AuthToken    string `json:"authToken,omitempty"`
	DeviceID     string `json:"deviceId,omitempty"`
}

type completionResponse struct {
	Text    string       `json:"text"`
	Usage   domain.Usage `json:"usage"`
	Error   string       `json:"error,omitempty"`
	Details string       `json:"details,omitempty"`
}

// Provider implements domain.Provider over the completion proxy.
type Provider struct {
	url        string
	authToken  string
	deviceID   string
	models     map[string]bool
	httpClient *http.Client
}

// NewProvider creates a proxy provider.
func NewProvider(config Config) (*Provider, error) {
	if config.URL == "" {
		return nil, errors.New("proxy URL is required")
	}

	models := make(map[string]bool, len(config.Models))
	for _, model := range config.Models {
		if model = strings.TrimSpace(model); model != "" {
			models[model] = true
		}
	}

	return &Provider{
		url:       config.URL,
		authToken: config.AuthToken,
		deviceID:  config.DeviceID,
		models:    models,
		httpClient: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
		},
	}, nil
}

// Complete posts the prompt and returns the proxy's text.
func (p *Provider) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.RawCompletion, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	logger := observability.FromContext(ctx)

	body := completionRequest{
		Prompt:       req.Prompt,
		SystemPrompt: req.SystemPrompt,
		Model:        req.Model,
	}
	if p.authToken != "" {
		body.AuthToken = p.authToken
	} else {
		body.DeviceID = p.deviceID
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if requestID := observability.GetRequestID(ctx); requestID != "" {
		httpReq.Header.Set("X-Request-ID", requestID)
	}

	logger.Debug("calling completion proxy")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, decodeFailure(resp)
	}

	var decoded completionResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&decoded); decodeErr != nil {
		return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if decoded.Error != "" {
		return nil, &domain.CompletionFailure{
			Status:  resp.StatusCode,
			Message: decoded.Error,
			Details: decoded.Details,
		}
	}

	usage := decoded.Usage
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}

	logger.Debug("completion proxy call succeeded",
		observability.Int("input_tokens", usage.InputTokens),
		observability.Int("output_tokens", usage.OutputTokens),
	)

	return &domain.RawCompletion{
		ID:         "proxy-" + uuid.New().String(),
		Model:      req.Model,
		Provider:   providerName,
		Text:       decoded.Text,
		Usage:      usage,
		FinishTime: time.Now(),
	}, nil
}

// decodeFailure turns a non-2xx response into a CompletionFailure, using the {error, details}
// payload when the body carries one.
func decodeFailure(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	failure := &domain.CompletionFailure{Status: resp.StatusCode}

	var payload completionResponse
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		failure.Message = payload.Error
		failure.Details = payload.Details
		return failure
	}

	failure.Message = http.StatusText(resp.StatusCode)
	failure.Details = strings.TrimSpace(string(raw))
	return failure
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return providerName
}

// IsModelSupported reports true for every model unless a model list was configured.
func (p *Provider) IsModelSupported(_ context.Context, model string) bool {
	if model == "" {
		return false
	}
	if len(p.models) == 0 {
		return true
	}
	return p.models[model]
}

// SupportedModels returns the configured models, or nil when every model is routed here.
func (p *Provider) SupportedModels(_ context.Context) []string {
	models := make([]string, 0, len(p.models))
	for model := range p.models {
		models = append(models, model)
	}
	return models
}
