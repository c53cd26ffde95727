package llm

import (
	"context"
	"errors"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

// AnthropicProvider is the second fallback backend.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	return &AnthropicProvider{client: anthropic.NewClient(apiKey), model: model}
}

func (p *AnthropicProvider) ID() ProviderID {
	return ProviderAnthropic
}

func (p *AnthropicProvider) Complete(ctx context.Context, req Request) (string, error) {
	temp := req.Temperature
	msgReq := anthropic.MessagesRequest{
		Model:       anthropic.Model(p.model),
		MaxTokens:   int(req.MaxTokens),
		Temperature: &temp,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(req.Prompt),
		},
	}
	if req.SystemPrompt != "" {
		msgReq.System = req.SystemPrompt
	}

	resp, err := p.client.CreateMessages(ctx, msgReq)
	if err != nil {
		var apiErr *anthropic.APIError
		if errors.As(err, &apiErr) {
			switch {
			case apiErr.IsAuthenticationErr(), apiErr.IsPermissionErr():
				return "", &ProviderError{Provider: ProviderAnthropic, Kind: FailAuth, Err: err}
			case apiErr.IsRateLimitErr():
				return "", &ProviderError{Provider: ProviderAnthropic, Kind: FailRateLimit, Err: err}
			}
		}
		return "", classifyTransport(ProviderAnthropic, err)
	}

	text := resp.GetFirstContentText()
	if text == "" {
		return "", &ProviderError{Provider: ProviderAnthropic, Kind: FailMalformed,
			Err: errors.New("response had no text content")}
	}

	return text, nil
}
