package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/phonescout/phonescout/internal/llm"
	"github.com/phonescout/phonescout/internal/metrics"
)

// ErrAllProvidersFailed is returned when every configured provider was
// skipped or failed.
var ErrAllProvidersFailed = errors.New("all LLM providers failed")

// LLMConfig tunes the orchestrator's resilience behavior.
type LLMConfig struct {
	FailureThreshold int
	BreakerTimeout   time.Duration
	MaxAttempts      int
	RetryMinWait     time.Duration
	RetryMaxWait     time.Duration
	RequestTimeout   time.Duration
}

func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		FailureThreshold: 5,
		BreakerTimeout:   60 * time.Second,
		MaxAttempts:      3,
		RetryMinWait:     time.Second,
		RetryMaxWait:     10 * time.Second,
		RequestTimeout:   30 * time.Second,
	}
}

// LLMService orchestrates text generation across an ordered list of
// providers, each gated by its own circuit breaker.
type LLMService struct {
	providers []llm.Provider // priority order
	breakers  map[llm.ProviderID]*llm.CircuitBreaker
	cfg       LLMConfig
}

func NewLLMService(providers []llm.Provider, cfg LLMConfig) *LLMService {
	breakers := make(map[llm.ProviderID]*llm.CircuitBreaker, len(providers))
	for _, p := range providers {
		breakers[p.ID()] = llm.NewCircuitBreaker(cfg.FailureThreshold, cfg.BreakerTimeout)
	}
	return &LLMService{providers: providers, breakers: breakers, cfg: cfg}
}

// Close releases provider clients that hold connections.
func (s *LLMService) Close() {
	for _, p := range s.providers {
		if closer, ok := p.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				log.Printf("Error closing provider %s: %v", p.ID(), err)
			}
		}
	}
}

// GenerateWithFallback tries providers in priority order and returns the
// first successful completion. Providers whose breaker rejects attempts are
// skipped; any failure after local retries falls through to the next
// provider.
func (s *LLMService) GenerateWithFallback(ctx context.Context, req llm.Request) (string, error) {
	var lastErr error

	for _, provider := range s.providers {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		breaker := s.breakers[provider.ID()]
		if !breaker.CanAttempt() {
			log.Printf("Circuit breaker open for %s, skipping", provider.ID())
			metrics.BreakerSkips.WithLabelValues(string(provider.ID())).Inc()
			continue
		}

		text, err := s.completeWithRetry(ctx, provider, req)
		if err == nil {
			breaker.RecordSuccess()
			metrics.ProviderAttempts.WithLabelValues(string(provider.ID()), "success").Inc()
			return text, nil
		}

		// A cancelled caller says nothing about the provider's health; do not
		// count it against the breaker.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		breaker.RecordFailure()
		metrics.ProviderAttempts.WithLabelValues(string(provider.ID()), "failure").Inc()
		metrics.ProviderFallbacks.WithLabelValues(string(provider.ID())).Inc()
		log.Printf("Provider %s failed: %v", provider.ID(), err)
		lastErr = err
	}

	if lastErr != nil {
		return "", fmt.Errorf("%w: last error: %v", ErrAllProvidersFailed, lastErr)
	}
	return "", ErrAllProvidersFailed
}

// completeWithRetry runs one provider with a bounded retry: up to
// MaxAttempts calls, exponential backoff between them, retrying only
// transient failures. Each attempt gets its own timeout.
func (s *LLMService) completeWithRetry(ctx context.Context, provider llm.Provider, req llm.Request) (string, error) {
	var lastErr error
	wait := s.cfg.RetryMinWait

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
			if wait > s.cfg.RetryMaxWait {
				wait = s.cfg.RetryMaxWait
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
		text, err := provider.Complete(attemptCtx, req)
		cancel()
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !llm.IsTransient(err) {
			return "", err
		}
		if ctx.Err() != nil {
			return "", lastErr
		}
	}
	return "", lastErr
}

// BreakerStates reports each provider's circuit state for health checks.
func (s *LLMService) BreakerStates() map[string]string {
	states := make(map[string]string, len(s.providers))
	for _, p := range s.providers {
		states[string(p.ID())] = s.breakers[p.ID()].State().String()
	}
	return states
}

// ClassifyIntent maps a user query to one of the fixed intents. Unmatched or
// erroring replies default to the search intent; this never fails.
func (s *LLMService) ClassifyIntent(ctx context.Context, query string) QueryIntent {
	prompt := fmt.Sprintf("Query: %s\n\nIntent:", query)

	response, err := s.GenerateWithFallback(ctx, llm.Request{
		Prompt:       prompt,
		SystemPrompt: intentClassificationPrompt,
		Temperature:  0.3,
		MaxTokens:    50,
	})
	if err != nil {
		log.Printf("Intent classification failed: %v", err)
		metrics.IntentDefaults.Inc()
		return IntentSearch
	}

	reply := strings.ToLower(strings.TrimSpace(response))
	for _, intent := range intentOrder {
		if strings.Contains(reply, string(intent)) {
			return intent
		}
	}

	metrics.IntentDefaults.Inc()
	return IntentSearch
}

// ExtractFilters pulls structured search filters out of a user query. Any
// failure, including unparseable JSON, yields the empty filter object.
func (s *LLMService) ExtractFilters(ctx context.Context, query string) SearchFilters {
	prompt := fmt.Sprintf("Query: %s\n\nExtracted filters:", query)

	response, err := s.GenerateWithFallback(ctx, llm.Request{
		Prompt:       prompt,
		SystemPrompt: filterExtractionPrompt,
		Temperature:  0.3,
		MaxTokens:    500,
	})
	if err != nil {
		log.Printf("Filter extraction failed: %v", err)
		metrics.FilterParseFailures.Inc()
		return SearchFilters{}
	}

	cleaned := stripCodeFence(response)

	var filters SearchFilters
	if err := json.Unmarshal([]byte(cleaned), &filters); err != nil {
		log.Printf("Filter extraction returned invalid JSON: %v. Response: %.100s", err, response)
		metrics.FilterParseFailures.Inc()
		return SearchFilters{}
	}
	return filters
}

// stripCodeFence removes surrounding ``` markers and an optional leading
// "json" language tag from an LLM reply.
func stripCodeFence(s string) string {
	cleaned := strings.TrimSpace(s)
	if strings.HasPrefix(cleaned, "```") {
		parts := strings.Split(cleaned, "```")
		if len(parts) > 1 {
			cleaned = parts[1]
		}
		cleaned = strings.TrimPrefix(cleaned, "json")
		cleaned = strings.TrimSpace(cleaned)
	}
	return cleaned
}

const historyWindow = 5

// GenerateResponse produces the final natural-language answer from the user
// query, a context block of retrieved phones, and recent history.
func (s *LLMService) GenerateResponse(ctx context.Context, query, contextBlock string, history []ChatMessage) (string, error) {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	var historyText strings.Builder
	for i, msg := range history {
		if i > 0 {
			historyText.WriteString("\n")
		}
		historyText.WriteString(msg.Role)
		historyText.WriteString(": ")
		historyText.WriteString(msg.Content)
	}

	prompt := fmt.Sprintf("Conversation History:\n%s\n\nContext (Available Phones):\n%s\n\nUser Query: %s\n\nResponse:",
		historyText.String(), contextBlock, query)

	return s.GenerateWithFallback(ctx, llm.Request{
		Prompt:       prompt,
		SystemPrompt: responseGenerationPrompt,
		Temperature:  0.7,
		MaxTokens:    1024,
	})
}
