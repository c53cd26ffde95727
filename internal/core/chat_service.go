package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phonescout/phonescout/internal/store"
)

// contextPhones caps how many retrieved phones feed the generation prompt.
const contextPhones = 5

// ChatService sequences safety gate, intent classification, filter
// extraction, retrieval and response generation into one pipeline.
type ChatService struct {
	llmService    *LLMService
	searchService *SearchService
	safetyService *SafetyService
	maxResults    int
}

func NewChatService(llm *LLMService, search *SearchService, safety *SafetyService, maxResults int) *ChatService {
	return &ChatService{
		llmService:    llm,
		searchService: search,
		safetyService: safety,
		maxResults:    maxResults,
	}
}

// HandleChat answers one shopping query. It always returns a well-formed
// ChatResponse: safety rejections and internal failures degrade to fixed
// messages instead of errors.
func (s *ChatService) HandleChat(ctx context.Context, message, sessionID string, history []ChatMessage) ChatResponse {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	now := time.Now()

	// The gate runs before any provider call so rejected queries cost nothing.
	isSafe, safetyReason := s.safetyService.CheckQuery(message)
	if !isSafe {
		return ChatResponse{
			Message:       s.safetyService.SafeMessage("adversarial"),
			Intent:        IntentAdversarial,
			Confidence:    1.0,
			IsSafe:        false,
			SafetyMessage: safetyReason,
			SessionID:     sessionID,
			Timestamp:     now,
		}
	}

	intent := s.llmService.ClassifyIntent(ctx, message)
	if intent == IntentAdversarial || intent == IntentIrrelevant {
		return ChatResponse{
			Message:    s.safetyService.SafeMessage("inappropriate"),
			Intent:     intent,
			Confidence: 0.9,
			IsSafe:     true,
			SessionID:  sessionID,
			Timestamp:  now,
		}
	}

	filters := s.llmService.ExtractFilters(ctx, message)

	phones, err := s.searchService.Search(filters, s.maxResults, sessionID)
	if err != nil {
		log.Printf("CHAT_ERROR | session_id=%s | search failed: %v", sessionID, err)
		return s.degradedResponse(sessionID, now)
	}

	responseText, err := s.llmService.GenerateResponse(ctx, message, buildContextBlock(phones), history)
	if err != nil {
		log.Printf("CHAT_ERROR | session_id=%s | generation failed: %v", sessionID, err)
		return s.degradedResponse(sessionID, now)
	}
	responseText = s.safetyService.SanitizeOutput(responseText)

	cards := make([]ProductCard, 0, len(phones))
	for _, p := range phones {
		cards = append(cards, productCard(p))
	}
	var suggestions []string
	if len(cards) > 0 {
		suggestions = comparisonSuggestions
	}

	return ChatResponse{
		Message:     responseText,
		Intent:      intent,
		Products:    cards,
		Confidence:  0.85,
		Suggestions: suggestions,
		IsSafe:      true,
		SessionID:   sessionID,
		Timestamp:   now,
	}
}

func (s *ChatService) degradedResponse(sessionID string, now time.Time) ChatResponse {
	return ChatResponse{
		Message:    "I'm having trouble processing your request right now. Please try again.",
		Intent:     IntentSearch,
		Confidence: 0.0,
		IsSafe:     true,
		SessionID:  sessionID,
		Timestamp:  now,
	}
}

// buildContextBlock renders the top retrieved phones into the grounding text
// for response generation.
func buildContextBlock(phones []store.Phone) string {
	var b strings.Builder
	for i, p := range phones {
		if i >= contextPhones {
			break
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Phone %d: %s by %s\n", i+1, p.Name, p.Brand)
		fmt.Fprintf(&b, "Price: ₹%.0f\n", p.Price)
		fmt.Fprintf(&b, "Display: %.1f\" %s, %dHz\n", p.DisplaySize, p.DisplayType, p.RefreshRate)
		fmt.Fprintf(&b, "Processor: %s\n", p.Processor)
		fmt.Fprintf(&b, "RAM/Storage: %dGB / %dGB\n", p.RAM, p.Storage)
		fmt.Fprintf(&b, "Camera: %s (OIS: %t)\n", p.RearCamera, p.HasOIS)
		fmt.Fprintf(&b, "Battery: %dmAh, %dW charging\n", p.BatteryCapacity, p.FastCharging)
		fmt.Fprintf(&b, "Highlights: %s\n", strings.Join(p.Highlights, ", "))
		fmt.Fprintf(&b, "Pros: %s", strings.Join(p.Pros, ", "))
	}
	return b.String()
}

func productCard(p store.Phone) ProductCard {
	highlights := p.Highlights
	if len(highlights) > 3 {
		highlights = highlights[:3]
	}
	return ProductCard{
		ID:    p.ID,
		Name:  p.Name,
		Brand: p.Brand,
		Price: p.Price,
		KeySpecs: map[string]string{
			"Display":   fmt.Sprintf("%.1f\" %s", p.DisplaySize, p.DisplayType),
			"Processor": p.Processor,
			"RAM":       fmt.Sprintf("%dGB", p.RAM),
			"Camera":    p.RearCamera,
			"Battery":   fmt.Sprintf("%dmAh", p.BatteryCapacity),
		},
		Highlights: highlights,
	}
}
