package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/phonescout/phonescout/internal/llm"
)

// stubProvider scripts completions by call number for orchestrator tests.
type stubProvider struct {
	id      llm.ProviderID
	fn      func(call int) (string, error)
	calls   int
	lastReq llm.Request
}

func (p *stubProvider) ID() llm.ProviderID { return p.id }

func (p *stubProvider) Complete(ctx context.Context, req llm.Request) (string, error) {
	p.calls++
	p.lastReq = req
	return p.fn(p.calls)
}

func alwaysReply(text string) func(int) (string, error) {
	return func(int) (string, error) { return text, nil }
}

func alwaysFail(kind llm.FailureKind) func(int) (string, error) {
	return func(int) (string, error) {
		return "", &llm.ProviderError{Provider: "stub", Kind: kind, Err: errors.New("scripted failure")}
	}
}

func fastLLMConfig() LLMConfig {
	cfg := DefaultLLMConfig()
	cfg.RetryMinWait = time.Millisecond
	cfg.RetryMaxWait = 5 * time.Millisecond
	cfg.RequestTimeout = time.Second
	return cfg
}

func TestFallbackTriesProvidersInOrder(t *testing.T) {
	a := &stubProvider{id: "a", fn: alwaysFail(llm.FailAuth)}
	b := &stubProvider{id: "b", fn: alwaysFail(llm.FailAuth)}
	c := &stubProvider{id: "c", fn: alwaysReply("from c")}
	svc := NewLLMService([]llm.Provider{a, b, c}, fastLLMConfig())

	text, err := svc.GenerateWithFallback(context.Background(), llm.Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "from c" {
		t.Fatalf("expected reply from third provider, got %q", text)
	}
	if a.calls != 1 || b.calls != 1 || c.calls != 1 {
		t.Fatalf("expected one call each, got a=%d b=%d c=%d", a.calls, b.calls, c.calls)
	}
	if svc.breakers["a"].FailureCount() != 1 {
		t.Errorf("expected failure recorded for a, got %d", svc.breakers["a"].FailureCount())
	}
	if svc.breakers["c"].State() != llm.StateClosed {
		t.Errorf("expected c closed, got %s", svc.breakers["c"].State())
	}
}

func TestFallbackSkipsOpenBreaker(t *testing.T) {
	cfg := fastLLMConfig()
	cfg.FailureThreshold = 1
	cfg.BreakerTimeout = time.Minute

	a := &stubProvider{id: "a", fn: alwaysFail(llm.FailAuth)}
	b := &stubProvider{id: "b", fn: alwaysReply("from b")}
	svc := NewLLMService([]llm.Provider{a, b}, cfg)

	if _, err := svc.GenerateWithFallback(context.Background(), llm.Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.breakers["a"].State() != llm.StateOpen {
		t.Fatalf("expected a's breaker open, got %s", svc.breakers["a"].State())
	}

	text, err := svc.GenerateWithFallback(context.Background(), llm.Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "from b" {
		t.Fatalf("expected reply from b, got %q", text)
	}
	if a.calls != 1 {
		t.Fatalf("expected a skipped on second request, got %d calls", a.calls)
	}
}

func TestAllProvidersFailed(t *testing.T) {
	a := &stubProvider{id: "a", fn: alwaysFail(llm.FailAuth)}
	b := &stubProvider{id: "b", fn: alwaysFail(llm.FailRateLimit)}
	svc := NewLLMService([]llm.Provider{a, b}, fastLLMConfig())

	_, err := svc.GenerateWithFallback(context.Background(), llm.Request{})
	if !errors.Is(err, ErrAllProvidersFailed) {
		t.Fatalf("expected ErrAllProvidersFailed, got %v", err)
	}
}

func TestTransientFailureRetriedOnSameProvider(t *testing.T) {
	a := &stubProvider{id: "a", fn: func(call int) (string, error) {
		if call < 3 {
			return "", &llm.ProviderError{Provider: "a", Kind: llm.FailTimeout, Err: errors.New("timed out")}
		}
		return "third time lucky", nil
	}}
	svc := NewLLMService([]llm.Provider{a}, fastLLMConfig())

	text, err := svc.GenerateWithFallback(context.Background(), llm.Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "third time lucky" {
		t.Fatalf("unexpected reply %q", text)
	}
	if a.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", a.calls)
	}
	if svc.breakers["a"].FailureCount() != 0 {
		t.Errorf("expected success to reset failure count, got %d", svc.breakers["a"].FailureCount())
	}
}

func TestPermanentFailureNotRetried(t *testing.T) {
	a := &stubProvider{id: "a", fn: alwaysFail(llm.FailAuth)}
	b := &stubProvider{id: "b", fn: alwaysReply("ok")}
	svc := NewLLMService([]llm.Provider{a, b}, fastLLMConfig())

	if _, err := svc.GenerateWithFallback(context.Background(), llm.Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.calls != 1 {
		t.Fatalf("expected auth failure to skip retries, got %d calls", a.calls)
	}
}

// hangingProvider blocks until the request context ends, standing in for an
// in-flight call abandoned by the client.
type hangingProvider struct {
	id    llm.ProviderID
	calls int
}

func (p *hangingProvider) ID() llm.ProviderID { return p.id }

func (p *hangingProvider) Complete(ctx context.Context, req llm.Request) (string, error) {
	p.calls++
	<-ctx.Done()
	return "", ctx.Err()
}

func TestCancelDuringCallNotCountedAsFailure(t *testing.T) {
	a := &hangingProvider{id: "a"}
	svc := NewLLMService([]llm.Provider{a}, fastLLMConfig())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := svc.GenerateWithFallback(ctx, llm.Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if a.calls != 1 {
		t.Fatalf("expected one in-flight call, got %d", a.calls)
	}
	if got := svc.breakers["a"].FailureCount(); got != 0 {
		t.Fatalf("expected no breaker failure after client cancel, got %d", got)
	}
	if svc.breakers["a"].State() != llm.StateClosed {
		t.Fatalf("expected breaker closed after client cancel, got %s", svc.breakers["a"].State())
	}
}

func TestFallbackStopsOnCanceledContext(t *testing.T) {
	a := &stubProvider{id: "a", fn: alwaysReply("should not be called")}
	svc := NewLLMService([]llm.Provider{a}, fastLLMConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.GenerateWithFallback(ctx, llm.Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if a.calls != 0 {
		t.Fatalf("expected no provider calls, got %d", a.calls)
	}
}

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		reply string
		want  QueryIntent
	}{
		{"compare", IntentCompare},
		{"The intent is: recommendation", IntentRecommendation},
		{"ADVERSARIAL", IntentAdversarial},
		{"details\n", IntentDetails},
		{"no idea what this is", IntentSearch},
	}

	for _, tt := range tests {
		p := &stubProvider{id: "a", fn: alwaysReply(tt.reply)}
		svc := NewLLMService([]llm.Provider{p}, fastLLMConfig())
		if got := svc.ClassifyIntent(context.Background(), "query"); got != tt.want {
			t.Errorf("reply %q: got %s, want %s", tt.reply, got, tt.want)
		}
	}
}

func TestClassifyIntentDefaultsOnFailure(t *testing.T) {
	p := &stubProvider{id: "a", fn: alwaysFail(llm.FailAuth)}
	svc := NewLLMService([]llm.Provider{p}, fastLLMConfig())

	if got := svc.ClassifyIntent(context.Background(), "query"); got != IntentSearch {
		t.Fatalf("expected search fallback, got %s", got)
	}
}

func TestExtractFilters(t *testing.T) {
	reply := "```json\n{\"brands\": [\"Samsung\"], \"max_price\": 30000, \"camera_focus\": true}\n```"
	p := &stubProvider{id: "a", fn: alwaysReply(reply)}
	svc := NewLLMService([]llm.Provider{p}, fastLLMConfig())

	filters := svc.ExtractFilters(context.Background(), "query")
	if len(filters.Brands) != 1 || filters.Brands[0] != "Samsung" {
		t.Errorf("unexpected brands %v", filters.Brands)
	}
	if filters.MaxPrice == nil || *filters.MaxPrice != 30000 {
		t.Errorf("unexpected max price %v", filters.MaxPrice)
	}
	if !filters.CameraFocus {
		t.Error("expected camera focus set")
	}
}

func TestExtractFiltersMalformedJSON(t *testing.T) {
	p := &stubProvider{id: "a", fn: alwaysReply("sorry, I can't produce JSON today")}
	svc := NewLLMService([]llm.Provider{p}, fastLLMConfig())

	filters := svc.ExtractFilters(context.Background(), "query")
	if len(filters.Brands) != 0 || filters.MaxPrice != nil || filters.CameraFocus {
		t.Fatalf("expected empty filters, got %+v", filters)
	}
}

func TestExtractFiltersProviderFailure(t *testing.T) {
	p := &stubProvider{id: "a", fn: alwaysFail(llm.FailAuth)}
	svc := NewLLMService([]llm.Provider{p}, fastLLMConfig())

	filters := svc.ExtractFilters(context.Background(), "query")
	if len(filters.Keywords) != 0 || filters.MinPrice != nil {
		t.Fatalf("expected empty filters, got %+v", filters)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"{\"a\": 1}", "{\"a\": 1}"},
		{"```json\n{\"a\": 1}\n```", "{\"a\": 1}"},
		{"```\n{\"a\": 1}\n```", "{\"a\": 1}"},
		{"  ```json\n{}\n```  ", "{}"},
	}

	for _, tt := range tests {
		if got := stripCodeFence(tt.in); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateResponseTrimsHistory(t *testing.T) {
	p := &stubProvider{id: "a", fn: alwaysReply("ok")}
	svc := NewLLMService([]llm.Provider{p}, fastLLMConfig())

	history := []ChatMessage{
		{Role: "user", Content: "turn one"},
		{Role: "assistant", Content: "turn two"},
		{Role: "user", Content: "turn three"},
		{Role: "assistant", Content: "turn four"},
		{Role: "user", Content: "turn five"},
		{Role: "assistant", Content: "turn six"},
		{Role: "user", Content: "turn seven"},
	}

	if _, err := svc.GenerateResponse(context.Background(), "query", "context", history); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := p.lastReq.Prompt
	if strings.Contains(prompt, "turn one") || strings.Contains(prompt, "turn two") {
		t.Error("expected oldest turns dropped from the prompt")
	}
	if !strings.Contains(prompt, "turn three") || !strings.Contains(prompt, "turn seven") {
		t.Error("expected the last five turns kept in the prompt")
	}
	if !strings.Contains(prompt, "Context (Available Phones):\ncontext") {
		t.Error("expected context block embedded in the prompt")
	}
}
