package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/davidbz/kiln/internal/advisor"
	"github.com/davidbz/kiln/internal/cache/memory"
	rediscache "github.com/davidbz/kiln/internal/cache/redis"
	"github.com/davidbz/kiln/internal/config"
	"github.com/davidbz/kiln/internal/domain"
	"github.com/davidbz/kiln/internal/http"
	"github.com/davidbz/kiln/internal/http/middleware"
	"github.com/davidbz/kiln/internal/observability"
	"github.com/davidbz/kiln/internal/provider/echo"
	"github.com/davidbz/kiln/internal/provider/openai"
	"github.com/davidbz/kiln/internal/provider/proxy"
	"github.com/davidbz/kiln/internal/provider/registry"
	"github.com/davidbz/kiln/internal/usage/httpsync"
	redisusage "github.com/davidbz/kiln/internal/usage/redis"
)

const shutdownTimeout = 15 * time.Second

// ErrProviderNotConfigured indicates that a provider is not configured and should be skipped.
var ErrProviderNotConfigured = errors.New("provider not configured")

func main() {
	container := buildContainer()

	err := container.Invoke(func(server *http.Server, ledger *domain.UsageLedger) error {
		return run(server, ledger)
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func run(server *http.Server, ledger *domain.UsageLedger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	ledger.Wait()
	if err := ledger.Flush(shutdownCtx); err != nil {
		observability.FromContext(shutdownCtx).Warn("final usage flush failed", observability.Error(err))
	}

	return nil
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}
	if err := container.Provide(func(logger *zap.Logger) domain.EventPublisher {
		return observability.NewEventBus(logger)
	}); err != nil {
		log.Fatalf("Failed to provide event bus: %v", err)
	}

	// Redis (connects lazily, only used by the redis cache and usage backends)
	if err := container.Provide(func(cfg *config.RedisConfig) *goredis.Client {
		return goredis.NewClient(&goredis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}); err != nil {
		log.Fatalf("Failed to provide redis client: %v", err)
	}

	// Provider Registry
	if err := container.Provide(func() domain.ProviderRegistry {
		return registry.NewRegistry()
	}); err != nil {
		log.Fatalf("Failed to provide registry: %v", err)
	}

	// Pricing (echo has none, so its usage costs nothing)
	if err := container.Provide(func() (domain.PricingRegistry, error) {
		ctx := context.Background()
		pricing := domain.NewPriceTable()
		if err := openai.RegisterPricing(ctx, pricing); err != nil {
			return nil, err
		}
		return pricing, nil
	}); err != nil {
		log.Fatalf("Failed to provide pricing registry: %v", err)
	}
	if err := container.Provide(func(pricing domain.PricingRegistry) domain.CostCalculator {
		return domain.NewTableCostCalculator(pricing)
	}); err != nil {
		log.Fatalf("Failed to provide cost calculator: %v", err)
	}

	// Register providers with registry (invoked for side effects)
	if err := container.Invoke(registerProviders); err != nil {
		log.Fatalf("Failed to register providers: %v", err)
	}

	// Usage
	if err := container.Provide(newUsageSyncer); err != nil {
		log.Fatalf("Failed to provide usage syncer: %v", err)
	}
	if err := container.Provide(func(
		syncer domain.UsageSyncer,
		publisher domain.EventPublisher,
		cfg *config.UsageConfig,
	) *domain.UsageLedger {
		ledger := domain.NewUsageLedger(syncer, publisher)
		ledger.SetSyncTimeout(cfg.SyncTimeout)
		return ledger
	}); err != nil {
		log.Fatalf("Failed to provide usage ledger: %v", err)
	}

	// Result cache
	if err := container.Provide(newResultCache); err != nil {
		log.Fatalf("Failed to provide result cache: %v", err)
	}

	// Domain Services
	if err := container.Provide(domain.NewCompletionClient); err != nil {
		log.Fatalf("Failed to provide completion client: %v", err)
	}
	if err := container.Provide(func(client *domain.CompletionClient) domain.Completer {
		return client
	}); err != nil {
		log.Fatalf("Failed to provide completer: %v", err)
	}
	if err := container.Provide(domain.NewOrchestrator); err != nil {
		log.Fatalf("Failed to provide orchestrator: %v", err)
	}
	if err := container.Provide(domain.NewInFlight); err != nil {
		log.Fatalf("Failed to provide in-flight registry: %v", err)
	}
	if err := container.Provide(func(
		orchestrator *domain.Orchestrator,
		cache domain.ResultCache,
		inflight *domain.InFlight,
		publisher domain.EventPublisher,
		cfg *advisor.Config,
	) *advisor.Advisor {
		return advisor.NewAdvisor(orchestrator, cache, inflight, publisher, *cfg)
	}); err != nil {
		log.Fatalf("Failed to provide advisor: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(http.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}

// registerProviders registers the configured providers in priority order, skipping the
// ones whose credentials are missing.
func registerProviders(
	reg domain.ProviderRegistry,
	completion *config.CompletionConfig,
	proxyCfg *proxy.Config,
	openaiCfg *openai.Config,
	logger *zap.Logger,
) error {
	ctx := context.Background()

	for _, name := range completion.Providers {
		name = strings.TrimSpace(name)

		provider, err := newProvider(name, proxyCfg, openaiCfg)
		if errors.Is(err, ErrProviderNotConfigured) {
			logger.Warn("skipping provider", zap.String("provider", name), zap.Error(err))
			continue
		}
		if err != nil {
			return err
		}

		if err := reg.Register(ctx, provider); err != nil {
			return fmt.Errorf("failed to register %s provider: %w", name, err)
		}
		logger.Info("provider registered", zap.String("provider", name))
	}

	return nil
}

func newProvider(name string, proxyCfg *proxy.Config, openaiCfg *openai.Config) (domain.Provider, error) {
	switch name {
	case "proxy":
		if proxyCfg.URL == "" {
			return nil, fmt.Errorf("%w: PROXY_URL is empty", ErrProviderNotConfigured)
		}
		provider, err := proxy.NewProvider(*proxyCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create proxy provider: %w", err)
		}
		return provider, nil
	case "openai":
		if openaiCfg.APIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY is empty", ErrProviderNotConfigured)
		}
		provider, err := openai.NewProvider(*openaiCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI provider: %w", err)
		}
		return provider, nil
	case "echo":
		return echo.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

// newUsageSyncer returns nil when syncing is disabled, which turns ledger flushes into no-ops.
func newUsageSyncer(cfg *config.UsageConfig, client *goredis.Client) (domain.UsageSyncer, error) {
	switch cfg.Syncer {
	case config.UsageSyncNone, "":
		return nil, nil
	case config.UsageSyncHTTP:
		syncer, err := httpsync.NewSyncer(cfg.HTTP)
		if err != nil {
			return nil, fmt.Errorf("failed to create usage syncer: %w", err)
		}
		return syncer, nil
	case config.UsageSyncRedis:
		return redisusage.NewSyncer(client, cfg.RedisKey), nil
	default:
		return nil, fmt.Errorf("unknown usage syncer %q", cfg.Syncer)
	}
}

// newResultCache returns nil when caching is disabled.
func newResultCache(cfg *config.CacheConfig, client *goredis.Client) (domain.ResultCache, error) {
	switch cfg.Backend {
	case config.CacheNone, "":
		return nil, nil
	case config.CacheMemory:
		return memory.NewLRU(cfg.MaxEntries), nil
	case config.CacheRedis:
		return rediscache.NewResultStore(client, cfg.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
