package llm

import (
	"testing"
	"time"
)

func TestBreakerOpensAtThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)

	cb.RecordFailure()
	cb.RecordFailure()
	if cb.State() != StateClosed {
		t.Fatalf("expected closed before threshold, got %s", cb.State())
	}
	if !cb.CanAttempt() {
		t.Fatal("expected attempts allowed before threshold")
	}

	cb.RecordFailure()
	if cb.State() != StateOpen {
		t.Fatalf("expected open at threshold, got %s", cb.State())
	}
	if cb.CanAttempt() {
		t.Fatal("expected attempts rejected while open")
	}
}

func TestBreakerHalfOpenAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(1, 20*time.Millisecond)
	cb.RecordFailure()

	if cb.CanAttempt() {
		t.Fatal("expected attempts rejected before timeout")
	}

	time.Sleep(30 * time.Millisecond)
	if !cb.CanAttempt() {
		t.Fatal("expected a probe allowed after timeout")
	}
	if cb.State() != StateHalfOpen {
		t.Fatalf("expected half_open, got %s", cb.State())
	}
}

func TestBreakerClosesOnSuccessfulProbe(t *testing.T) {
	cb := NewCircuitBreaker(1, 20*time.Millisecond)
	cb.RecordFailure()
	time.Sleep(30 * time.Millisecond)
	cb.CanAttempt()

	cb.RecordSuccess()
	if cb.State() != StateClosed {
		t.Fatalf("expected closed after probe success, got %s", cb.State())
	}
	if cb.FailureCount() != 0 {
		t.Fatalf("expected failure count reset, got %d", cb.FailureCount())
	}
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	cb := NewCircuitBreaker(1, 20*time.Millisecond)
	cb.RecordFailure()
	time.Sleep(30 * time.Millisecond)
	cb.CanAttempt()

	cb.RecordFailure()
	if cb.State() != StateOpen {
		t.Fatalf("expected open after probe failure, got %s", cb.State())
	}
	if cb.CanAttempt() {
		t.Fatal("expected attempts rejected after probe failure")
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)
	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	cb.RecordFailure()

	if cb.State() != StateClosed {
		t.Fatalf("expected closed, got %s", cb.State())
	}
}
