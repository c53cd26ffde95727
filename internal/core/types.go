package core

import "time"

// QueryIntent is the closed set of intents the classifier can produce.
type QueryIntent string

const (
	IntentSearch         QueryIntent = "search"
	IntentCompare        QueryIntent = "compare"
	IntentDetails        QueryIntent = "details"
	IntentExplain        QueryIntent = "explain"
	IntentRecommendation QueryIntent = "recommendation"
	IntentAdversarial    QueryIntent = "adversarial"
	IntentIrrelevant     QueryIntent = "irrelevant"
)

// intentOrder is the matching order for classifier replies.
var intentOrder = []QueryIntent{
	IntentSearch,
	IntentCompare,
	IntentDetails,
	IntentExplain,
	IntentRecommendation,
	IntentAdversarial,
	IntentIrrelevant,
}

// SearchFilters is the structured constraint object extracted from free
// text. Nil pointer fields mean "no constraint", never "false".
type SearchFilters struct {
	Brands     []string `json:"brands,omitempty"`
	MinPrice   *float64 `json:"min_price,omitempty"`
	MaxPrice   *float64 `json:"max_price,omitempty"`
	PriceRange string   `json:"price_range,omitempty"`

	MinRAM     *int `json:"min_ram,omitempty"`
	MinStorage *int `json:"min_storage,omitempty"`
	MinBattery *int `json:"min_battery,omitempty"`

	FiveG            *bool `json:"five_g,omitempty"`
	NFC              *bool `json:"nfc,omitempty"`
	WirelessCharging *bool `json:"wireless_charging,omitempty"`

	// Focus flags pick the single ordering rule, in this priority order.
	CameraFocus      bool `json:"camera_focus,omitempty"`
	BatteryFocus     bool `json:"battery_focus,omitempty"`
	PerformanceFocus bool `json:"performance_focus,omitempty"`
	CompactSize      bool `json:"compact_size,omitempty"`

	Keywords []string `json:"keywords,omitempty"`
}

// ChatMessage is one turn of conversation history supplied by the client.
type ChatMessage struct {
	Role    string `json:"role"` // user, assistant
	Content string `json:"content"`
}

// ProductCard is the compact product representation returned to the client.
type ProductCard struct {
	ID         int64             `json:"id"`
	Name       string            `json:"name"`
	Brand      string            `json:"brand"`
	Price      float64           `json:"price"`
	KeySpecs   map[string]string `json:"key_specs"`
	Highlights []string          `json:"highlights"`
}

// ChatResponse is the single answer shape for every chat request, including
// safety rejections and degraded internal-failure replies.
type ChatResponse struct {
	Message string      `json:"message"`
	Intent  QueryIntent `json:"intent"`

	Products []ProductCard `json:"products"`

	Confidence  float64  `json:"confidence"`
	Suggestions []string `json:"suggestions,omitempty"`

	IsSafe        bool   `json:"is_safe"`
	SafetyMessage string `json:"safety_message,omitempty"`

	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}
