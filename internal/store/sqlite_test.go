package store

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testPhone(name, brand string, price float64) Phone {
	return Phone{
		Name: name, Brand: brand, Price: price, PriceRange: "mid_range",
		DisplaySize: 6.5, DisplayType: "AMOLED", RefreshRate: 120, Resolution: "2400x1080",
		Processor: "Snapdragon 7 Gen 1", RAM: 8, Storage: 128,
		RearCamera: "50MP", FrontCamera: "16MP",
		BatteryCapacity: 5000, OS: "Android 14", FiveG: true,
		Weight: 190, Thickness: 8.0,
		Highlights:   []string{"Good display"},
		Pros:         []string{"Value"},
		Cons:         []string{"Average camera"},
		Availability: true,
	}
}

func TestInsertAndGetPhone(t *testing.T) {
	db := newTestDB(t)

	p := testPhone("Test Phone", "Testbrand", 19999)
	p.IPRating = "IP67"
	if err := db.InsertPhone(&p); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("expected id assigned on insert")
	}

	got, err := db.GetByID(p.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected phone, got nil")
	}
	if got.Name != "Test Phone" || got.Price != 19999 || got.IPRating != "IP67" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.Highlights) != 1 || got.Highlights[0] != "Good display" {
		t.Errorf("highlights mismatch: %v", got.Highlights)
	}
}

func TestGetByIDMissing(t *testing.T) {
	db := newTestDB(t)

	got, err := db.GetByID(12345)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing id, got %+v", got)
	}
}

func TestInsertPhoneNullIPRating(t *testing.T) {
	db := newTestDB(t)

	p := testPhone("No Rating", "Testbrand", 9999)
	if err := db.InsertPhone(&p); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := db.GetByID(p.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.IPRating != "" {
		t.Errorf("expected empty ip rating, got %q", got.IPRating)
	}
}

func TestQueryProductsDefaultLimit(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 12; i++ {
		p := testPhone("Phone", "Brand", float64(10000+i*100))
		if err := db.InsertPhone(&p); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	phones, err := db.QueryProducts(ProductQuery{})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(phones) != 10 {
		t.Fatalf("expected default limit of 10, got %d", len(phones))
	}
}

func TestSeedFromFileIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	seedPath := filepath.Join(t.TempDir(), "seed.json")
	seed := `[
        {"name": "Seed Phone", "brand": "Seedbrand", "price": 15000, "price_range": "mid_range",
         "display_size": 6.5, "display_type": "LCD", "refresh_rate": 90, "resolution": "2400x1080",
         "processor": "Helio G99", "ram": 6, "storage": 128,
         "rear_camera": "50MP", "front_camera": "8MP",
         "battery_capacity": 5000, "os": "Android 14", "five_g": true,
         "weight": 190, "thickness": 8.2,
         "highlights": ["Cheap"], "pros": ["Value"], "cons": ["Slow"], "availability": true}
    ]`
	if err := os.WriteFile(seedPath, []byte(seed), 0o644); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}

	n, err := db.SeedFromFile(seedPath)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 seeded phone, got %d", n)
	}

	n, err = db.SeedFromFile(seedPath)
	if err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no rows on reseed, got %d", n)
	}

	count, err := db.CountPhones()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 phone after reseed, got %d", count)
	}
}

func TestLogSearchAndComparison(t *testing.T) {
	db := newTestDB(t)

	err := db.LogSearch(SearchEvent{
		SessionID: "s1", Query: `{"max_price":30000}`, Intent: "search",
		ResultsCount: 3, ResponseTimeMS: 12.5,
	})
	if err != nil {
		t.Fatalf("log search failed: %v", err)
	}

	if err := db.LogComparison("s1", []int64{1, 2}); err != nil {
		t.Fatalf("log comparison failed: %v", err)
	}
}
