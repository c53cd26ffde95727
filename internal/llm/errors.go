package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// FailureKind classifies provider failures so the orchestrator can decide
// between retrying locally and falling through to the next provider.
type FailureKind string

const (
	FailTimeout    FailureKind = "timeout"
	FailConnection FailureKind = "connection"
	FailAuth       FailureKind = "auth"
	FailRateLimit  FailureKind = "rate_limit"
	FailMalformed  FailureKind = "malformed_response"
	FailBlocked    FailureKind = "content_blocked"
	FailUnknown    FailureKind = "unknown"
)

// ProviderError wraps an adapter failure with its provider and kind.
type ProviderError struct {
	Provider ProviderID
	Kind     FailureKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure is worth retrying on the same
// provider. Only timeouts and connection failures qualify; auth, quota,
// malformed and blocked responses fall through immediately.
func (e *ProviderError) Transient() bool {
	return e.Kind == FailTimeout || e.Kind == FailConnection
}

// IsTransient reports whether err represents a retryable failure.
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return false
}

// classifyTransport maps an untyped adapter error to a ProviderError.
// Adapters call it after their SDK-specific checks have not matched.
func classifyTransport(provider ProviderID, err error) *ProviderError {
	kind := FailUnknown

	var nerr net.Error
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()):
		kind = FailTimeout
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "broken pipe"):
		kind = FailConnection
	case strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "invalid api key"),
		strings.Contains(msg, "permission"),
		strings.Contains(msg, "401"),
		strings.Contains(msg, "403"):
		kind = FailAuth
	case strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "quota"),
		strings.Contains(msg, "429"):
		kind = FailRateLimit
	}

	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}
