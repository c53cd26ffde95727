package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/phonescout/phonescout/internal/store"
)

var (
	ErrNotEnoughProducts = errors.New("at least 2 products required for comparison")
	ErrTooManyProducts   = errors.New("maximum 3 products can be compared")
	ErrProductsNotFound  = errors.New("one or more products not found")
)

// SearchService translates filter objects into deterministic, ranked catalog
// queries.
type SearchService struct {
	store *store.SQLiteStore
}

func NewSearchService(db *store.SQLiteStore) *SearchService {
	return &SearchService{store: db}
}

// Search applies the filters against the catalog, re-ranks by keywords when
// present, and returns at most limit phones. A non-empty sessionID records
// the search for analytics; analytics failures never fail the search.
func (s *SearchService) Search(filters SearchFilters, limit int, sessionID string) ([]store.Phone, error) {
	start := time.Now()

	phones, err := s.store.QueryProducts(buildProductQuery(filters, limit))
	if err != nil {
		return nil, fmt.Errorf("product query failed: %w", err)
	}

	if len(filters.Keywords) > 0 {
		phones = rankByKeywords(phones, filters.Keywords)
	}
	if len(phones) > limit {
		phones = phones[:limit]
	}

	if sessionID != "" {
		filtersJSON, _ := json.Marshal(filters)
		event := store.SearchEvent{
			SessionID:      sessionID,
			Query:          string(filtersJSON),
			Intent:         string(IntentSearch),
			ResultsCount:   len(phones),
			ResponseTimeMS: float64(time.Since(start).Microseconds()) / 1000.0,
		}
		if err := s.store.LogSearch(event); err != nil {
			log.Printf("Failed to log search: %v", err)
		}
	}

	return phones, nil
}

// buildProductQuery maps filters onto the storage predicate. Exactly one
// ordering rule applies, chosen by focus priority.
func buildProductQuery(filters SearchFilters, limit int) store.ProductQuery {
	q := store.ProductQuery{
		Brands:           filters.Brands,
		MinPrice:         filters.MinPrice,
		MaxPrice:         filters.MaxPrice,
		PriceRange:       filters.PriceRange,
		MinRAM:           filters.MinRAM,
		MinStorage:       filters.MinStorage,
		MinBattery:       filters.MinBattery,
		FiveG:            filters.FiveG,
		NFC:              filters.NFC,
		WirelessCharging: filters.WirelessCharging,
		Limit:            limit,
	}

	switch {
	case filters.CameraFocus:
		q.OrderBy = store.OrderCameraQuality
	case filters.BatteryFocus:
		q.OrderBy = store.OrderBatteryDesc
	case filters.PerformanceFocus:
		q.OrderBy = store.OrderRAMDesc
	case filters.CompactSize:
		q.OrderBy = store.OrderCompact
	default:
		q.OrderBy = store.OrderPriceAsc
	}
	return q
}

type scoredPhone struct {
	phone store.Phone
	score float64
}

// rankByKeywords drops phones matching no keyword and sorts the rest by
// score descending. The sort is stable: ties keep their prior order.
func rankByKeywords(phones []store.Phone, keywords []string) []store.Phone {
	scored := make([]scoredPhone, 0, len(phones))
	for _, p := range phones {
		if score := keywordScore(p, keywords); score > 0 {
			scored = append(scored, scoredPhone{phone: p, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	result := make([]store.Phone, len(scored))
	for i, sp := range scored {
		result[i] = sp.phone
	}
	return result
}

// keywordScore adds 1.0 per keyword found in the searchable blob, plus 0.5
// each for a name or brand match.
func keywordScore(p store.Phone, keywords []string) float64 {
	name := strings.ToLower(p.Name)
	brand := strings.ToLower(p.Brand)
	searchable := strings.ToLower(strings.Join([]string{
		p.Name,
		p.Brand,
		p.Processor,
		strings.Join(p.Highlights, " "),
		strings.Join(p.Pros, " "),
	}, " "))

	var score float64
	for _, kw := range keywords {
		k := strings.ToLower(kw)
		if !strings.Contains(searchable, k) {
			continue
		}
		score += 1.0
		if strings.Contains(name, k) {
			score += 0.5
		}
		if strings.Contains(brand, k) {
			score += 0.5
		}
	}
	return score
}

// Compare resolves 2-3 product ids for comparison. Fewer than 2 resolved
// products is a not-found condition, not a partial comparison.
func (s *SearchService) Compare(ids []int64, sessionID string) ([]store.Phone, error) {
	if len(ids) < 2 {
		return nil, ErrNotEnoughProducts
	}
	if len(ids) > 3 {
		return nil, ErrTooManyProducts
	}

	phones, err := s.store.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("comparison query failed: %w", err)
	}
	if len(phones) < 2 {
		return nil, ErrProductsNotFound
	}

	if sessionID != "" {
		if err := s.store.LogComparison(sessionID, ids); err != nil {
			log.Printf("Failed to log comparison: %v", err)
		}
	}
	return phones, nil
}

func (s *SearchService) GetByID(id int64) (*store.Phone, error) {
	return s.store.GetByID(id)
}
