package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/davidbz/kiln/internal/advisor"
	"github.com/davidbz/kiln/internal/observability"
	"github.com/davidbz/kiln/internal/provider/openai"
	"github.com/davidbz/kiln/internal/provider/proxy"
	"github.com/davidbz/kiln/internal/usage/httpsync"
)

// Config represents the service configuration.
type Config struct {
	Server     ServerConfig
	CORS       CORSConfig
	Log        observability.LogConfig
	Completion CompletionConfig
	Advisor    advisor.Config
	Proxy      proxy.Config
	OpenAI     openai.Config
	Usage      UsageConfig
	Cache      CacheConfig
	Redis      RedisConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"90"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	ExposedHeaders   []string `env:"CORS_EXPOSED_HEADERS"   envSeparator:"," envDefault:"X-Kiln-Partial,X-Kiln-Cache,X-Kiln-Fingerprint,X-Kiln-Stale,X-Request-Id"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// CompletionConfig selects the providers registered for routing, in priority order.
type CompletionConfig struct {
	Providers []string `env:"COMPLETION_PROVIDERS" envSeparator:"," envDefault:"proxy,openai,echo"`
}

// Usage syncer backends.
const (
	UsageSyncNone  = "none"
	UsageSyncHTTP  = "http"
	UsageSyncRedis = "redis"
)

// UsageConfig selects where the usage ledger is flushed.
type UsageConfig struct {
	Syncer      string        `env:"USAGE_SYNCER"        envDefault:"none"`
	SyncTimeout time.Duration `env:"USAGE_FLUSH_TIMEOUT" envDefault:"10s"`
	RedisKey    string        `env:"USAGE_REDIS_KEY"     envDefault:"kiln:usage"`
	HTTP        httpsync.Config
}

// Result cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// CacheConfig selects the result cache.
type CacheConfig struct {
	Backend    string `env:"CACHE_BACKEND"     envDefault:"memory"`
	MaxEntries int    `env:"CACHE_MAX_ENTRIES" envDefault:"256"`
	KeyPrefix  string `env:"CACHE_KEY_PREFIX"  envDefault:"kiln:result:"`
}

// RedisConfig contains Redis connection settings shared by the cache and the usage syncer.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"       envDefault:"0"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*ServerConfig
	*CORSConfig
	*observability.LogConfig
	*CompletionConfig
	Advisor *advisor.Config
	Proxy   *proxy.Config
	OpenAI  *openai.Config
	*UsageConfig
	*CacheConfig
	*RedisConfig
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Server,
		&cfg.CORS,
		&cfg.Log,
		&cfg.Completion,
		&cfg.Advisor,
		&cfg.Proxy,
		&cfg.OpenAI,
		&cfg.Usage,
		&cfg.Cache,
		&cfg.Redis,
	}
}
