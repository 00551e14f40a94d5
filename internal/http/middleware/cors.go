package middleware

import (
	"net/http"
	"slices"

	"github.com/rs/cors"

	"github.com/davidbz/kiln/internal/config"
)

// CORS applies the configured cross-origin policy. Without a config or allowed origins
// it passes requests through untouched.
func CORS(cfg *config.CORSConfig) Middleware {
	if cfg == nil || len(cfg.AllowedOrigins) == 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return cors.New(corsOptions(cfg)).Handler
}

// corsOptions never combines credentials with a wildcard origin, which rs/cors would
// otherwise answer by reflecting any caller's origin.
func corsOptions(cfg *config.CORSConfig) cors.Options {
	wildcard := slices.Contains(cfg.AllowedOrigins, "*")

	return cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials && !wildcard,
		MaxAge:           cfg.MaxAge,
	}
}
