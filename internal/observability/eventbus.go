package observability

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Event types published by the kiln services.
const (
	EventResultDegraded  = "result.degraded"
	EventUsageSyncFailed = "usage.sync_failed"
	EventStaleResult     = "result.stale"
)

// EventBus implements domain.EventPublisher. Each event becomes a log entry and an event on
// the active span.
type EventBus struct {
	logger *zap.Logger
}

// NewEventBus creates a new event bus. A nil logger falls back to the context logger.
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		logger: logger,
	}
}

func (e *EventBus) Publish(ctx context.Context, eventType string, data map[string]interface{}) {
	logger := e.logger
	if logger == nil {
		logger = FromContext(ctx)
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(data)+1)
	attrs := make([]attribute.KeyValue, 0, len(data))
	fields = append(fields, zap.String("event", eventType))
	for _, k := range keys {
		fields = append(fields, zap.Any(k, data[k]))
		attrs = append(attrs, attribute.String(k, fmt.Sprint(data[k])))
	}

	logger.Log(eventLevel(eventType), eventType, fields...)
	trace.SpanFromContext(ctx).AddEvent(eventType, trace.WithAttributes(attrs...))
}

func eventLevel(eventType string) zapcore.Level {
	switch eventType {
	case EventUsageSyncFailed, EventResultDegraded:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
