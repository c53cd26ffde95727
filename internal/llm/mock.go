package llm

import (
	"context"
	"time"
)

const mockResponse = `{"intent": "search", "filters": {"price_range": "mid_range"}, "response": "I can help you find mobile phones. Please provide more details."}`

// MockProvider is the terminal fallback, registered only when no real
// provider is configured. It returns a canned reply after simulated latency.
type MockProvider struct{}

func (MockProvider) ID() ProviderID {
	return ProviderMock
}

func (MockProvider) Complete(ctx context.Context, _ Request) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(50 * time.Millisecond):
	}
	return mockResponse, nil
}
