package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable, for health checks.
func (s *SQLiteStore) Ping() error {
	return s.db.Ping()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS mobile_phones (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL,
        brand TEXT NOT NULL,
        price REAL NOT NULL,
        price_range TEXT NOT NULL,
        display_size REAL NOT NULL,
        display_type TEXT NOT NULL,
        refresh_rate INTEGER NOT NULL,
        resolution TEXT NOT NULL,
        processor TEXT NOT NULL,
        ram INTEGER NOT NULL,
        storage INTEGER NOT NULL,
        rear_camera TEXT NOT NULL,
        front_camera TEXT NOT NULL,
        has_ois BOOLEAN DEFAULT FALSE,
        has_eis BOOLEAN DEFAULT FALSE,
        battery_capacity INTEGER NOT NULL,
        fast_charging INTEGER DEFAULT 0,
        wireless_charging BOOLEAN DEFAULT FALSE,
        os TEXT NOT NULL,
        five_g BOOLEAN DEFAULT FALSE,
        nfc BOOLEAN DEFAULT FALSE,
        ip_rating TEXT,
        weight INTEGER NOT NULL,
        thickness REAL NOT NULL,
        highlights TEXT NOT NULL DEFAULT '[]', -- JSON array
        pros TEXT NOT NULL DEFAULT '[]',       -- JSON array
        cons TEXT NOT NULL DEFAULT '[]',       -- JSON array
        availability BOOLEAN DEFAULT TRUE
    );
    CREATE INDEX IF NOT EXISTS idx_phones_brand ON mobile_phones (brand);
    CREATE INDEX IF NOT EXISTS idx_phones_price ON mobile_phones (price);

    CREATE TABLE IF NOT EXISTS search_history (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id TEXT NOT NULL,
        query TEXT NOT NULL,
        intent TEXT NOT NULL,
        results_count INTEGER NOT NULL,
        response_time_ms REAL NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS comparison_history (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id TEXT NOT NULL,
        product_ids TEXT NOT NULL, -- JSON array of ids
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

const phoneColumns = `id, name, brand, price, price_range,
    display_size, display_type, refresh_rate, resolution,
    processor, ram, storage,
    rear_camera, front_camera, has_ois, has_eis,
    battery_capacity, fast_charging, wireless_charging,
    os, five_g, nfc, ip_rating,
    weight, thickness, highlights, pros, cons, availability`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhone(row rowScanner) (Phone, error) {
	var (
		p          Phone
		ipRating   sql.NullString
		highlights string
		pros       string
		cons       string
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Brand, &p.Price, &p.PriceRange,
		&p.DisplaySize, &p.DisplayType, &p.RefreshRate, &p.Resolution,
		&p.Processor, &p.RAM, &p.Storage,
		&p.RearCamera, &p.FrontCamera, &p.HasOIS, &p.HasEIS,
		&p.BatteryCapacity, &p.FastCharging, &p.WirelessCharging,
		&p.OS, &p.FiveG, &p.NFC, &ipRating,
		&p.Weight, &p.Thickness, &highlights, &pros, &cons, &p.Availability,
	)
	if err != nil {
		return Phone{}, err
	}
	if ipRating.Valid {
		p.IPRating = ipRating.String
	}
	// Text-list columns are stored as JSON arrays. A corrupt cell leaves the
	// list empty rather than failing the whole row.
	_ = json.Unmarshal([]byte(highlights), &p.Highlights)
	_ = json.Unmarshal([]byte(pros), &p.Pros)
	_ = json.Unmarshal([]byte(cons), &p.Cons)
	return p, nil
}

// QueryProducts runs a filtered, ordered, bounded catalog query. Results are
// deterministic for a fixed catalog: every ordering rule ends with an id
// tiebreak.
func (s *SQLiteStore) QueryProducts(q ProductQuery) ([]Phone, error) {
	conds := []string{"availability = TRUE"}
	var args []any

	if len(q.Brands) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(q.Brands)), ",")
		conds = append(conds, fmt.Sprintf("brand IN (%s)", placeholders))
		for _, b := range q.Brands {
			args = append(args, b)
		}
	}
	if q.MinPrice != nil {
		conds = append(conds, "price >= ?")
		args = append(args, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		conds = append(conds, "price <= ?")
		args = append(args, *q.MaxPrice)
	}
	if q.PriceRange != "" {
		conds = append(conds, "price_range = ?")
		args = append(args, q.PriceRange)
	}
	if q.MinRAM != nil {
		conds = append(conds, "ram >= ?")
		args = append(args, *q.MinRAM)
	}
	if q.MinStorage != nil {
		conds = append(conds, "storage >= ?")
		args = append(args, *q.MinStorage)
	}
	if q.MinBattery != nil {
		conds = append(conds, "battery_capacity >= ?")
		args = append(args, *q.MinBattery)
	}
	if q.FiveG != nil {
		conds = append(conds, "five_g = ?")
		args = append(args, *q.FiveG)
	}
	if q.NFC != nil {
		conds = append(conds, "nfc = ?")
		args = append(args, *q.NFC)
	}
	if q.WirelessCharging != nil {
		conds = append(conds, "wireless_charging = ?")
		args = append(args, *q.WirelessCharging)
	}

	var order string
	switch q.OrderBy {
	case OrderCameraQuality:
		order = "has_ois DESC, has_eis DESC, id ASC"
	case OrderBatteryDesc:
		order = "battery_capacity DESC, id ASC"
	case OrderRAMDesc:
		order = "ram DESC, id ASC"
	case OrderCompact:
		order = "weight ASC, display_size ASC, id ASC"
	default:
		order = "price ASC, id ASC"
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf("SELECT %s FROM mobile_phones WHERE %s ORDER BY %s LIMIT ?",
		phoneColumns, strings.Join(conds, " AND "), order)
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query phones: %w", err)
	}
	defer rows.Close()

	var phones []Phone
	for rows.Next() {
		p, err := scanPhone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan phone row: %w", err)
		}
		phones = append(phones, p)
	}
	return phones, rows.Err()
}

func (s *SQLiteStore) GetByID(id int64) (*Phone, error) {
	row := s.db.QueryRow(fmt.Sprintf("SELECT %s FROM mobile_phones WHERE id = ?", phoneColumns), id)
	p, err := scanPhone(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get phone: %w", err)
	}
	return &p, nil
}

func (s *SQLiteStore) GetByIDs(ids []int64) ([]Phone, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf("SELECT %s FROM mobile_phones WHERE id IN (%s) ORDER BY id ASC",
		phoneColumns, placeholders)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query phones by ids: %w", err)
	}
	defer rows.Close()

	var phones []Phone
	for rows.Next() {
		p, err := scanPhone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan phone row: %w", err)
		}
		phones = append(phones, p)
	}
	return phones, rows.Err()
}

func (s *SQLiteStore) InsertPhone(p *Phone) error {
	highlights, err := json.Marshal(p.Highlights)
	if err != nil {
		return fmt.Errorf("failed to marshal highlights: %w", err)
	}
	pros, err := json.Marshal(p.Pros)
	if err != nil {
		return fmt.Errorf("failed to marshal pros: %w", err)
	}
	cons, err := json.Marshal(p.Cons)
	if err != nil {
		return fmt.Errorf("failed to marshal cons: %w", err)
	}

	res, err := s.db.Exec(`INSERT INTO mobile_phones (
        name, brand, price, price_range,
        display_size, display_type, refresh_rate, resolution,
        processor, ram, storage,
        rear_camera, front_camera, has_ois, has_eis,
        battery_capacity, fast_charging, wireless_charging,
        os, five_g, nfc, ip_rating,
        weight, thickness, highlights, pros, cons, availability
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Brand, p.Price, p.PriceRange,
		p.DisplaySize, p.DisplayType, p.RefreshRate, p.Resolution,
		p.Processor, p.RAM, p.Storage,
		p.RearCamera, p.FrontCamera, p.HasOIS, p.HasEIS,
		p.BatteryCapacity, p.FastCharging, p.WirelessCharging,
		p.OS, p.FiveG, p.NFC, nullableString(p.IPRating),
		p.Weight, p.Thickness, string(highlights), string(pros), string(cons), p.Availability,
	)
	if err != nil {
		return fmt.Errorf("failed to insert phone: %w", err)
	}
	p.ID, _ = res.LastInsertId()
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// LogSearch records a search event for analytics. Callers treat failures as
// non-fatal.
func (s *SQLiteStore) LogSearch(event SearchEvent) error {
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.Exec(
		"INSERT INTO search_history (session_id, query, intent, results_count, response_time_ms, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		event.SessionID, event.Query, event.Intent, event.ResultsCount, event.ResponseTimeMS, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}

// LogComparison records a product comparison for analytics. Callers treat
// failures as non-fatal.
func (s *SQLiteStore) LogComparison(sessionID string, productIDs []int64) error {
	idsJSON, err := json.Marshal(productIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal product ids: %w", err)
	}
	_, err = s.db.Exec(
		"INSERT INTO comparison_history (session_id, product_ids) VALUES (?, ?)",
		sessionID, string(idsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to log comparison: %w", err)
	}
	return nil
}

// CountPhones returns the number of catalog rows, used to make seeding
// idempotent.
func (s *SQLiteStore) CountPhones() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM mobile_phones").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count phones: %w", err)
	}
	return count, nil
}

// SeedFromFile loads catalog rows from a JSON array of phones. Seeding is
// skipped when the catalog already has rows.
func (s *SQLiteStore) SeedFromFile(filePath string) (int, error) {
	existing, err := s.CountPhones()
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, nil
	}

	contentBytes, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file %s: %w", filePath, err)
	}

	var phones []Phone
	if err := json.Unmarshal(contentBytes, &phones); err != nil {
		return 0, fmt.Errorf("failed to parse seed file %s: %w", filePath, err)
	}

	count := 0
	for i := range phones {
		if err := s.InsertPhone(&phones[i]); err != nil {
			return count, fmt.Errorf("failed to seed phone %q: %w", phones[i].Name, err)
		}
		count++
	}
	return count, nil
}
