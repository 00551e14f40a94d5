package registry_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/kiln/internal/domain"
	"github.com/davidbz/kiln/internal/mocks"
	"github.com/davidbz/kiln/internal/provider/registry"
)

// stubProvider lists models; a wildcard stub accepts any model without listing one.
type stubProvider struct {
	name     string
	models   []string
	wildcard bool
}

func (s *stubProvider) Complete(_ context.Context, req *domain.CompletionRequest) (*domain.RawCompletion, error) {
	return &domain.RawCompletion{Model: req.Model}, nil
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) IsModelSupported(_ context.Context, model string) bool {
	if s.wildcard {
		return model != ""
	}
	for _, m := range s.models {
		if m == model {
			return true
		}
	}
	return false
}

func (s *stubProvider) SupportedModels(_ context.Context) []string { return s.models }

func TestRegistry_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		provider domain.Provider
		errText  string
	}{
		{name: "nil provider", provider: nil, errText: "provider cannot be nil"},
		{name: "empty name", provider: &stubProvider{}, errText: "provider name cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.NewRegistry().Register(ctx, tt.provider)
			require.ErrorContains(t, err, tt.errText)
		})
	}

	t.Run("should reject a duplicate name", func(t *testing.T) {
		reg := registry.NewRegistry()
		require.NoError(t, reg.Register(ctx, &stubProvider{name: "openai"}))

		err := reg.Register(ctx, &stubProvider{name: "openai"})
		require.ErrorContains(t, err, "already registered")
	})
}

func TestRegistry_Get(t *testing.T) {
	ctx := context.Background()
	reg := registry.NewRegistry()
	require.NoError(t, reg.Register(ctx, &stubProvider{name: "echo", models: []string{"echo4"}}))

	provider, err := reg.Get(ctx, "echo")
	require.NoError(t, err)
	require.Equal(t, "echo", provider.Name())

	_, err = reg.Get(ctx, "missing")
	require.ErrorIs(t, err, registry.ErrProviderNotFound)

	_, err = reg.Get(ctx, "")
	require.Error(t, err)
}

func TestRegistry_List(t *testing.T) {
	ctx := context.Background()
	reg := registry.NewRegistry()

	names, err := reg.List(ctx)
	require.NoError(t, err)
	require.Empty(t, names)

	for _, name := range []string{"proxy", "openai", "echo"} {
		require.NoError(t, reg.Register(ctx, &stubProvider{name: name}))
	}

	names, err = reg.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"proxy", "openai", "echo"}, names)
}

func TestRegistry_GetByModel(t *testing.T) {
	ctx := context.Background()

	newRegistry := func(t *testing.T, providers ...domain.Provider) *registry.Registry {
		t.Helper()
		reg := registry.NewRegistry()
		for _, p := range providers {
			require.NoError(t, reg.Register(ctx, p))
		}
		return reg
	}

	openai := &stubProvider{name: "openai", models: []string{"gpt-4o", "gpt-4o-mini"}}
	echo := &stubProvider{name: "echo", models: []string{"echo4"}}
	proxy := &stubProvider{name: "proxy", wildcard: true}

	tests := []struct {
		name      string
		providers []domain.Provider
		model     string
		expected  string
		err       error
	}{
		{name: "listed model", providers: []domain.Provider{openai, echo}, model: "echo4", expected: "echo"},
		{name: "listed model beats an earlier wildcard", providers: []domain.Provider{proxy, openai}, model: "gpt-4o", expected: "openai"},
		{name: "unlisted model falls to the wildcard", providers: []domain.Provider{openai, proxy}, model: "claude-like", expected: "proxy"},
		{name: "unknown model", providers: []domain.Provider{openai, echo}, model: "llama", err: registry.ErrNoProviderForModel},
		{name: "empty registry", model: "gpt-4o", err: registry.ErrNoProviderForModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := newRegistry(t, tt.providers...).GetByModel(ctx, tt.model)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, provider.Name())
		})
	}

	t.Run("should keep a model with the first provider listing it", func(t *testing.T) {
		reg := newRegistry(t, openai, &stubProvider{name: "mirror", models: []string{"gpt-4o"}})

		provider, err := reg.GetByModel(ctx, "gpt-4o")
		require.NoError(t, err)
		require.Equal(t, "openai", provider.Name())
	})

	t.Run("should reject an empty model", func(t *testing.T) {
		_, err := newRegistry(t, openai).GetByModel(ctx, "")
		require.Error(t, err)
	})

	t.Run("should ask wildcard providers in registration order", func(t *testing.T) {
		first := mocks.NewMockProvider(t)
		first.EXPECT().Name().Return("first")
		first.EXPECT().SupportedModels(mock.Anything).Return(nil)
		first.EXPECT().IsModelSupported(mock.Anything, "any").Return(false)

		second := mocks.NewMockProvider(t)
		second.EXPECT().Name().Return("second")
		second.EXPECT().SupportedModels(mock.Anything).Return(nil)
		second.EXPECT().IsModelSupported(mock.Anything, "any").Return(true)

		provider, err := newRegistry(t, first, second).GetByModel(ctx, "any")
		require.NoError(t, err)
		require.Equal(t, "second", provider.Name())
	})
}

func TestRegistry_ConcurrentRegisterAndLookup(t *testing.T) {
	ctx := context.Background()
	reg := registry.NewRegistry()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("p%d", i)
			require.NoError(t, reg.Register(ctx, &stubProvider{name: name, models: []string{name + "-model"}}))
		}()
		go func() {
			defer wg.Done()
			_, _ = reg.GetByModel(ctx, "p0-model")
		}()
	}
	wg.Wait()

	names, err := reg.List(ctx)
	require.NoError(t, err)
	require.Len(t, names, 20)

	provider, err := reg.GetByModel(ctx, "p7-model")
	require.NoError(t, err)
	require.Equal(t, "p7", provider.Name())
}
