package llm

import "context"

// ProviderID identifies one text-generation backend.
type ProviderID string

const (
	ProviderGemini    ProviderID = "gemini"
	ProviderOpenAI    ProviderID = "openai"
	ProviderAnthropic ProviderID = "anthropic"
	ProviderMock      ProviderID = "mock"
)

// Request is an immutable generation request passed down the provider chain.
type Request struct {
	Prompt       string
	SystemPrompt string
	Temperature  float32
	MaxTokens    int32
}

// Provider is one interchangeable text-completion backend. Complete returns
// the generated text or a *ProviderError classifying the failure.
type Provider interface {
	ID() ProviderID
	Complete(ctx context.Context, req Request) (string, error)
}
