package store

import "time"

// Phone is one catalog row. Rows are created by seeding and are read-only
// for the request path.
type Phone struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Brand      string  `json:"brand"`
	Price      float64 `json:"price"`
	PriceRange string  `json:"price_range"` // budget | mid_range | premium | flagship

	// Display
	DisplaySize float64 `json:"display_size"` // inches
	DisplayType string  `json:"display_type"` // AMOLED, LCD, etc.
	RefreshRate int     `json:"refresh_rate"` // Hz
	Resolution  string  `json:"resolution"`

	// Performance
	Processor string `json:"processor"`
	RAM       int    `json:"ram"`     // GB
	Storage   int    `json:"storage"` // GB

	// Camera
	RearCamera  string `json:"rear_camera"`
	FrontCamera string `json:"front_camera"`
	HasOIS      bool   `json:"has_ois"`
	HasEIS      bool   `json:"has_eis"`

	// Battery
	BatteryCapacity  int  `json:"battery_capacity"` // mAh
	FastCharging     int  `json:"fast_charging"`    // Watts, 0 when unsupported
	WirelessCharging bool `json:"wireless_charging"`

	// Features
	OS       string `json:"os"`
	FiveG    bool   `json:"five_g"`
	NFC      bool   `json:"nfc"`
	IPRating string `json:"ip_rating,omitempty"`

	// Dimensions
	Weight    int     `json:"weight"`    // grams
	Thickness float64 `json:"thickness"` // mm

	Highlights []string `json:"highlights"`
	Pros       []string `json:"pros"`
	Cons       []string `json:"cons"`

	Availability bool `json:"availability"`
}

// ProductOrder selects the single ordering rule for a catalog query.
type ProductOrder int

const (
	OrderPriceAsc ProductOrder = iota
	OrderCameraQuality
	OrderBatteryDesc
	OrderRAMDesc
	OrderCompact
)

// ProductQuery is the structured predicate handed to QueryProducts.
// Nil pointer fields mean "no constraint".
type ProductQuery struct {
	Brands           []string
	MinPrice         *float64
	MaxPrice         *float64
	PriceRange       string
	MinRAM           *int
	MinStorage       *int
	MinBattery       *int
	FiveG            *bool
	NFC              *bool
	WirelessCharging *bool

	OrderBy ProductOrder
	Limit   int
}

// SearchEvent is one analytics row describing a completed catalog search.
type SearchEvent struct {
	SessionID      string
	Query          string
	Intent         string
	ResultsCount   int
	ResponseTimeMS float64
	CreatedAt      time.Time
}
