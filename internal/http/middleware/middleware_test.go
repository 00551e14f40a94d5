package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/kiln/internal/config"
	"github.com/davidbz/kiln/internal/http/middleware"
	"github.com/davidbz/kiln/internal/observability"
)

func TestChain_Order(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := middleware.Chain(tag("first"), tag("second"))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestTrace_InjectsIDs(t *testing.T) {
	var requestID, traceID string
	handler := middleware.Trace()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = observability.GetRequestID(r.Context())
		traceID = observability.GetTraceID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusTeapot, w.Code)
	require.NotEmpty(t, requestID)
	require.Equal(t, requestID, w.Header().Get("X-Request-Id"))
	require.Equal(t, traceID, w.Header().Get("X-Trace-Id"))
}

func TestTrace_HonorsIncomingRequestID(t *testing.T) {
	var requestID string
	handler := middleware.Trace()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		requestID = observability.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "caller-42")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, "caller-42", requestID)
	require.Equal(t, "caller-42", w.Header().Get("X-Request-Id"))
}

func TestRecover(t *testing.T) {
	handler := middleware.Recover()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORS_ExposesKilnHeaders(t *testing.T) {
	cfg := &config.CORSConfig{
		AllowedOrigins: []string{"https://app.test"},
		AllowedMethods: []string{http.MethodPost},
		ExposedHeaders: []string{"X-Kiln-Partial"},
	}
	handler := middleware.CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/rank", nil)
	req.Header.Set("Origin", "https://app.test")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, "https://app.test", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "X-Kiln-Partial", w.Header().Get("Access-Control-Expose-Headers"))
}

func TestCORS_NilConfigIsNoop(t *testing.T) {
	called := false
	handler := middleware.CORS(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, called)
}

func TestCORS_WildcardNeverAllowsCredentials(t *testing.T) {
	cfg := &config.CORSConfig{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodPost},
		AllowCredentials: true,
	}
	handler := middleware.CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/rank", nil)
	req.Header.Set("Origin", "https://anywhere.test")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}
