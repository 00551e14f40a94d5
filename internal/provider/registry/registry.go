// Package registry resolves completion models to the provider that serves them.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/davidbz/kiln/internal/domain"
)

var (
	ErrProviderNotFound   = errors.New("provider not found")
	ErrNoProviderForModel = errors.New("no provider serves model")
)

// Registry implements domain.ProviderRegistry. Providers are consulted in registration order,
// which is the priority order of COMPLETION_PROVIDERS.
type Registry struct {
	mu        sync.RWMutex
	providers []domain.Provider
	byName    map[string]domain.Provider
	byModel   map[string]domain.Provider
}

func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]domain.Provider),
		byModel: make(map[string]domain.Provider),
	}
}

// Register adds provider and indexes its listed models. A model listed by two providers
// stays with the one registered first.
func (r *Registry) Register(ctx context.Context, provider domain.Provider) error {
	if provider == nil {
		return errors.New("provider cannot be nil")
	}

	name := provider.Name()
	if name == "" {
		return errors.New("provider name cannot be empty")
	}

	models := provider.SupportedModels(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}

	r.providers = append(r.providers, provider)
	r.byName[name] = provider
	for _, model := range models {
		if _, taken := r.byModel[model]; !taken {
			r.byModel[model] = provider
		}
	}

	return nil
}

func (r *Registry) Get(_ context.Context, name string) (domain.Provider, error) {
	if name == "" {
		return nil, errors.New("provider name cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
	}
	return provider, nil
}

// List returns provider names in registration order.
func (r *Registry) List(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for _, provider := range r.providers {
		names = append(names, provider.Name())
	}
	return names, nil
}

// GetByModel returns the provider indexed for model, or else the first provider that
// accepts it without listing it (the proxy).
func (r *Registry) GetByModel(ctx context.Context, model string) (domain.Provider, error) {
	if model == "" {
		return nil, errors.New("model cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if provider, ok := r.byModel[model]; ok {
		return provider, nil
	}

	for _, provider := range r.providers {
		if provider.IsModelSupported(ctx, model) {
			return provider, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNoProviderForModel, model)
}
