// Package metrics exposes prometheus counters for the silent-degradation
// paths: provider fallbacks, breaker skips, intent defaulting, filter parse
// recovery and safety rejections.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "phonescout",
		Subsystem: "llm",
		Name:      "provider_attempts_total",
		Help:      "Generation attempts per provider by outcome",
	}, []string{"provider", "outcome"})

	ProviderFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "phonescout",
		Subsystem: "llm",
		Name:      "provider_fallback_total",
		Help:      "Times a provider failed and the request fell through to the next one",
	}, []string{"provider"})

	BreakerSkips = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "phonescout",
		Subsystem: "llm",
		Name:      "breaker_skip_total",
		Help:      "Providers skipped because their circuit breaker was open",
	}, []string{"provider"})

	IntentDefaults = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "phonescout",
		Subsystem: "pipeline",
		Name:      "intent_default_total",
		Help:      "Classifier replies that did not match any intent and defaulted to search",
	})

	FilterParseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "phonescout",
		Subsystem: "pipeline",
		Name:      "filter_parse_failures_total",
		Help:      "Filter extractions that returned unparseable JSON and fell back to the empty filter",
	})

	SafetyBlocks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "phonescout",
		Subsystem: "safety",
		Name:      "blocked_total",
		Help:      "Queries rejected by the safety gate, by reason",
	}, []string{"reason"})
)
