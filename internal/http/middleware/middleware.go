package middleware

import (
	"net/http"

	"github.com/davidbz/kiln/internal/config"
)

// Middleware decorates the API mux.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares; the first one sees the request first.
func Chain(middlewares ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			h = middlewares[i](h)
		}
		return h
	}
}

// BuildMiddlewareChain returns CORS, then Trace, then Recover, so a recovered panic is
// logged with the request's trace fields.
func BuildMiddlewareChain(corsConfig *config.CORSConfig) Middleware {
	return Chain(
		CORS(corsConfig),
		Trace(),
		Recover(),
	)
}
