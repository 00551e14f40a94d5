package observability

import (
	"context"
	"crypto/rand"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

type contextKey string

// Context keys for the fields FromContext attaches to every log line.
const (
	TraceIDKey     contextKey = "trace_id"
	SpanIDKey      contextKey = "span_id"
	RequestIDKey   contextKey = "request_id"
	ModelKey       contextKey = "model"
	DomainKey      contextKey = "domain"
	FingerprintKey contextKey = "fingerprint"
)

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, SpanIDKey, spanID)
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func WithModel(ctx context.Context, model string) context.Context {
	return context.WithValue(ctx, ModelKey, model)
}

// WithDomain tags ctx with the feature domain (rank, detail, ...).
func WithDomain(ctx context.Context, domain string) context.Context {
	return context.WithValue(ctx, DomainKey, domain)
}

func WithFingerprint(ctx context.Context, fingerprint string) context.Context {
	return context.WithValue(ctx, FingerprintKey, fingerprint)
}

func stringValue(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// GetTraceID prefers the trace of a recording OpenTelemetry span over the generated id.
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return stringValue(ctx, TraceIDKey)
}

// GetSpanID prefers the id of a recording OpenTelemetry span over the generated id.
func GetSpanID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.SpanID().String()
	}
	return stringValue(ctx, SpanIDKey)
}

func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

func GetModel(ctx context.Context) string {
	return stringValue(ctx, ModelKey)
}

func GetDomain(ctx context.Context) string {
	return stringValue(ctx, DomainKey)
}

func GetFingerprint(ctx context.Context) string {
	return stringValue(ctx, FingerprintKey)
}

// GenerateTraceID returns a random W3C trace id (32 hex chars), used while no tracer
// provider is installed.
func GenerateTraceID() string {
	var id trace.TraceID
	_, _ = rand.Read(id[:])
	return id.String()
}

// GenerateSpanID returns a random W3C span id (16 hex chars).
func GenerateSpanID() string {
	var id trace.SpanID
	_, _ = rand.Read(id[:])
	return id.String()
}

func GenerateRequestID() string {
	return uuid.NewString()
}
