package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrInvalidRequest rejects a completion request before any network call.
	ErrInvalidRequest = errors.New("invalid completion request")

	// ErrCacheMiss indicates no cached entry was found.
	ErrCacheMiss = errors.New("cache miss")
)

// snippetLimit bounds the raw text carried by ParseStageError.
const snippetLimit = 500

// CompletionFailure is a service-reported failure, carrying the service message and any
// diagnostic details it returned.
type CompletionFailure struct {
	Status  int
	Message string
	Details string
}

func (e *CompletionFailure) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "completion service error"
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Details != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Details)
	}
	return msg
}

// CallStageError means the completion request itself failed.
type CallStageError struct {
	Domain Domain
	Err    error
}

func (e *CallStageError) Error() string {
	return fmt.Sprintf("%s: completion call failed: %v", e.Domain, e.Err)
}

func (e *CallStageError) Unwrap() error {
	return e.Err
}

// ParseStageError means the completion succeeded but carried no usable structured object.
type ParseStageError struct {
	Domain  Domain
	Snippet string
}

func (e *ParseStageError) Error() string {
	return fmt.Sprintf("%s: no structured object in completion (raw: %q)", e.Domain, e.Snippet)
}

// Snippet returns at most the first 500 runes of raw.
func Snippet(raw string) string {
	runes := []rune(raw)
	if len(runes) <= snippetLimit {
		return raw
	}
	return string(runes[:snippetLimit])
}
