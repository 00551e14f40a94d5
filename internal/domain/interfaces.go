package domain

import (
	"context"
	"time"
)

// Provider represents a generative completion backend.
type Provider interface {
	// Complete sends a completion request and returns the raw response.
	Complete(ctx context.Context, req *CompletionRequest) (*RawCompletion, error)

	// Name returns the provider identifier.
	Name() string

	// IsModelSupported checks if the provider supports the given model.
	IsModelSupported(ctx context.Context, model string) bool

	// SupportedModels lists the models indexed by the registry.
	SupportedModels(ctx context.Context) []string
}

// ProviderRegistry manages available providers.
type ProviderRegistry interface {
	// Register adds a provider to the registry.
	Register(ctx context.Context, provider Provider) error

	// Get retrieves a provider by name.
	Get(ctx context.Context, providerName string) (Provider, error)

	// GetByModel retrieves the provider serving model.
	GetByModel(ctx context.Context, model string) (Provider, error)

	// List returns all available providers.
	List(ctx context.Context) ([]string, error)
}

// Completer performs a single completion call.
type Completer interface {
	Complete(ctx context.Context, req PromptRequest) (*RawCompletion, error)
}

// UsageSyncer pushes accumulated usage to a remote ledger.
type UsageSyncer interface {
	Sync(ctx context.Context, usage UsageSnapshot) error
}

// ResultCache stores encoded domain results keyed by request fingerprint.
type ResultCache interface {
	// Get returns ErrCacheMiss when key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores data for ttl.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// EventPublisher publishes events for observability.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}
