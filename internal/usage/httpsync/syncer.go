// Package httpsync pushes accumulated usage to the remote usage endpoint.
package httpsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/davidbz/kiln/internal/domain"
	"github.com/davidbz/kiln/internal/observability"
)

// Config contains usage endpoint configuration.
type Config struct {
	URL       string `env:"USAGE_SYNC_URL"`
	Timeout   int    `env:"USAGE_SYNC_TIMEOUT" envDefault:"10"`
	AuthToken string `env:"USAGE_SYNC_AUTH_TOKEN"`
}

type syncPayload struct {
	TotalTokens       int `json:"total_tokens"`
	InputTokens       int `json:"input_tokens"`
	OutputTokens      int `json:"output_tokens"`
	RequestCount      int `json:"request_count"`
	NoteProposalCount int `json:"note_proposal_count"`
}

// Syncer implements domain.UsageSyncer over HTTP.
type Syncer struct {
	url        string
	authToken  string
	httpClient *http.Client
}

// NewSyncer creates an HTTP usage syncer.
func NewSyncer(config Config) (*Syncer, error) {
	if config.URL == "" {
		return nil, errors.New("usage sync URL is required")
	}

	return &Syncer{
		url:       config.URL,
		authToken: config.AuthToken,
		httpClient: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
		},
	}, nil
}

// Sync posts usage. Any non-2xx response is an error.
func (s *Syncer) Sync(ctx context.Context, usage domain.UsageSnapshot) error {
	reqBody, err := json.Marshal(syncPayload{
		TotalTokens:       usage.TotalTokens,
		InputTokens:       usage.InputTokens,
		OutputTokens:      usage.OutputTokens,
		RequestCount:      usage.RequestCount,
		NoteProposalCount: usage.ProposalCount,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal usage: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.authToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("usage sync request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("usage sync returned status %d", resp.StatusCode)
	}

	observability.FromContext(ctx).Debug("usage synced",
		observability.Int("total_tokens", usage.TotalTokens),
		observability.Int("request_count", usage.RequestCount))
	return nil
}
