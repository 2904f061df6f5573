// Package llm defines the provider-neutral boundary to generative-text models.
package llm

import (
	"context"
	"errors"
	"strings"
)

// ErrorKind distinguishes the failure classes the pipeline cares about.
type ErrorKind string

const (
	// KindQuotaExceeded signals rate or quota exhaustion (HTTP 429 class).
	KindQuotaExceeded ErrorKind = "quota_exceeded"
	// KindUpstream signals a transient provider-side failure (HTTP 5xx class).
	KindUpstream ErrorKind = "upstream_error"
	// KindOther covers every remaining call failure.
	KindOther ErrorKind = "call_failed"
)

// CallError is a typed model-call failure. Provider clients return it so the
// orchestrator never has to sniff error strings for status codes.
type CallError struct {
	Kind    ErrorKind
	Message string
}

func (e *CallError) Error() string { return e.Message }

// NewCallError builds a CallError with the given kind and message.
func NewCallError(kind ErrorKind, msg string) *CallError {
	return &CallError{Kind: kind, Message: msg}
}

// Classify returns the ErrorKind for a model-call failure. Typed errors are
// inspected directly; anything else falls back to substring matching on
// "429"/"500", which some transports bake into their error text.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindOther
	}
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "429"):
		return KindQuotaExceeded
	case strings.Contains(msg, "500"):
		return KindUpstream
	default:
		return KindOther
	}
}

// KindForStatus maps an HTTP status code to an ErrorKind.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == 429:
		return KindQuotaExceeded
	case status >= 500:
		return KindUpstream
	default:
		return KindOther
	}
}

// Client is a single-prompt generative-text capability. One prompt in, one
// free-form text response out; no retries, no streaming.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}
