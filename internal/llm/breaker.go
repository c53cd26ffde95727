package llm

import (
	"log"
	"sync"
	"time"
)

// BreakerState is the circuit breaker lifecycle state.
type BreakerState int

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// CircuitBreaker tracks consecutive failures for one provider and gates
// attempts while the provider is deemed unhealthy. It is shared across
// concurrent requests; all state transitions happen under the mutex.
type CircuitBreaker struct {
	mu               sync.Mutex
	failureThreshold int
	timeout          time.Duration

	failureCount    int
	lastFailureTime time.Time
	state           BreakerState
}

func NewCircuitBreaker(failureThreshold int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		timeout:          timeout,
		state:            StateClosed,
	}
}

// RecordSuccess resets the breaker to closed.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount = 0
	cb.state = StateClosed
}

// RecordFailure increments the failure count and opens the breaker once the
// threshold is reached. A failing half-open probe reopens it the same way.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount++
	cb.lastFailureTime = time.Now()

	if cb.failureCount >= cb.failureThreshold {
		if cb.state != StateOpen {
			log.Printf("Circuit breaker opened after %d failures", cb.failureCount)
		}
		cb.state = StateOpen
	}
}

// CanAttempt reports whether a request may be sent. When the breaker is open
// and the timeout has elapsed it transitions to half-open as a side effect,
// letting one probe through. Two racing callers may both observe half-open
// and probe; the first recorded outcome wins.
func (cb *CircuitBreaker) CanAttempt() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(cb.lastFailureTime) >= cb.timeout {
			cb.state = StateHalfOpen
			log.Println("Circuit breaker entering half-open state")
			return true
		}
		return false
	default: // StateHalfOpen
		return true
	}
}

// State returns the current breaker state, for health reporting and tests.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// FailureCount returns the current consecutive failure count.
func (cb *CircuitBreaker) FailureCount() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failureCount
}
