package domain

import "encoding/json"

// Severity grades how much of a result came from the fallback library.
type Severity int

const (
	// SeverityNone marks genuine completion content.
	SeverityNone Severity = iota

	// SeverityItem means some items or slots were substituted.
	SeverityItem

	// SeverityWhole means the entire value is fallback content.
	SeverityWhole
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityItem:
		return "item"
	case SeverityWhole:
		return "whole"
	default:
		return "unknown"
	}
}

// Result is a schema-complete domain value plus an out-of-band partial marker.
// The marker is not part of the value: it is not serialized and never compared.
type Result[T any] struct {
	Value    T
	severity Severity
}

// NewResult wraps a genuine value.
func NewResult[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

// MarkPartial tags r as degraded. The higher of the existing and new severity wins.
func MarkPartial[T any](r Result[T], severity Severity) Result[T] {
	if severity > r.severity {
		r.severity = severity
	}
	return r
}

// IsPartial reports whether any part of r came from the fallback library.
func IsPartial[T any](r Result[T]) bool {
	return r.severity != SeverityNone
}

// Partial is the method form of IsPartial.
func (r Result[T]) Partial() bool {
	return r.severity != SeverityNone
}

// Severity returns the partial severity.
func (r Result[T]) Severity() Severity {
	return r.severity
}

// MarshalJSON encodes only the value.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Value)
}
