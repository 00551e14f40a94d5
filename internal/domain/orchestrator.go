package domain

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/davidbz/kiln/internal/extract"
	"github.com/davidbz/kiln/internal/observability"
)

// ParseFunc turns an extracted object into a typed value, reporting false when it cannot.
type ParseFunc[T any] func(node extract.Node) (T, bool)

// Outcome is the result of one orchestrated call. Parsed is false only when the request
// allowed an unparsed answer and none could be extracted.
type Outcome[T any] struct {
	Raw    *RawCompletion
	Value  T
	Parsed bool
}

// Orchestrator sequences client call, extraction and parsing. It never substitutes
// fallback content: every failure leaves as a tagged error.
type Orchestrator struct {
	client Completer
}

// NewOrchestrator creates an orchestrator (DI constructor).
func NewOrchestrator(client Completer) *Orchestrator {
	return &Orchestrator{
		client: client,
	}
}

// Run performs req and parses the answer with parse. It returns exactly one of a typed
// outcome or a *CallStageError / *ParseStageError.
func Run[T any](ctx context.Context, o *Orchestrator, req PromptRequest, parse ParseFunc[T]) (Outcome[T], error) {
	ctx = observability.WithDomain(ctx, string(req.Domain))
	ctx = observability.WithModel(ctx, req.Model)

	ctx, span := observability.StartSpan(ctx, "kiln.orchestrator.run",
		attribute.String("kiln.domain", string(req.Domain)),
		attribute.String("kiln.model", req.Model),
	)

	outcome, err := run(ctx, o, req, parse)
	if err == nil {
		span.SetAttributes(attribute.Bool("kiln.parsed", outcome.Parsed))
	}
	observability.EndSpan(span, err)

	return outcome, err
}

func run[T any](ctx context.Context, o *Orchestrator, req PromptRequest, parse ParseFunc[T]) (Outcome[T], error) {
	logger := observability.FromContext(ctx)

	raw, err := o.client.Complete(ctx, req)
	if err != nil {
		logger.Warn("call stage failed", observability.Error(err))
		return Outcome[T]{}, &CallStageError{Domain: req.Domain, Err: err}
	}

	if node, ok := extract.Parse(raw.Text); ok {
		if value, parsed := parse(node); parsed {
			return Outcome[T]{Raw: raw, Value: value, Parsed: true}, nil
		}
	}

	if !req.AllowUnparsed {
		snippet := Snippet(raw.Text)
		logger.Warn("parse stage failed",
			observability.Int("raw_length", len(raw.Text)))
		return Outcome[T]{}, &ParseStageError{Domain: req.Domain, Snippet: snippet}
	}

	logger.Info("completion returned without structured object")
	return Outcome[T]{Raw: raw, Parsed: false}, nil
}
