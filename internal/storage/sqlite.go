package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/meur/unitvalues/internal/models"
)

// Store handles all database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with SQLite
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs database migrations
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS units (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			game TEXT NOT NULL,
			slug TEXT NOT NULL,
			name TEXT NOT NULL,
			image TEXT,
			rarity TEXT NOT NULL,
			value INTEGER NOT NULL CHECK (value >= 0),
			demand TEXT,
			demand_score INTEGER,
			trend TEXT,
			obtained_from TEXT,
			traits TEXT,
			data TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_units_game ON units(game)`,
		`CREATE INDEX IF NOT EXISTS idx_units_slug ON units(slug)`,
		`CREATE TABLE IF NOT EXISTS codes (
			code TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			reward TEXT NOT NULL,
			status TEXT NOT NULL,
			added_date TEXT
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// unitData holds the display-only columns packed into units.data
type unitData struct {
	DPS         string `json:"dps,omitempty"`
	Notes       string `json:"notes,omitempty"`
	ShinyValue  *int64 `json:"shiny_value,omitempty"`
	Exists      *int64 `json:"exists,omitempty"`
	ShinyExists *int64 `json:"shiny_exists,omitempty"`
}

// --- Units ---

const unitColumns = `id, game, slug, name, image, rarity, value, demand, demand_score, trend, obtained_from, traits, data`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUnit(row rowScanner) (models.Unit, error) {
	var u models.Unit
	var image, demand, trend, obtainedFrom, traits, data sql.NullString
	var demandScore sql.NullInt64
	err := row.Scan(&u.ID, &u.Game, &u.Slug, &u.Name, &image, &u.Rarity, &u.Value,
		&demand, &demandScore, &trend, &obtainedFrom, &traits, &data)
	if err != nil {
		return u, err
	}
	u.Image = image.String
	u.Demand = models.Demand(demand.String)
	u.DemandScore = int(demandScore.Int64)
	u.Trend = models.Trend(trend.String)
	u.ObtainedFrom = obtainedFrom.String

	if traits.Valid && traits.String != "" {
		if err := json.Unmarshal([]byte(traits.String), &u.Traits); err != nil {
			return u, fmt.Errorf("unit %s traits: %w", u.ID, err)
		}
	}
	if data.Valid && data.String != "" {
		var d unitData
		if err := json.Unmarshal([]byte(data.String), &d); err != nil {
			return u, fmt.Errorf("unit %s data: %w", u.ID, err)
		}
		u.DPS, u.Notes = d.DPS, d.Notes
		u.ShinyValue, u.Exists, u.ShinyExists = d.ShinyValue, d.Exists, d.ShinyExists
	}
	return u, nil
}

// GetUnits returns every unit in the order it was imported
func (s *Store) GetUnits() ([]models.Unit, error) {
	return s.queryUnits(`SELECT ` + unitColumns + ` FROM units ORDER BY position`)
}

// GetUnitsByGame returns the units of one title in import order
func (s *Store) GetUnitsByGame(game models.GameID) ([]models.Unit, error) {
	return s.queryUnits(`SELECT `+unitColumns+` FROM units WHERE game = ? ORDER BY position`, game)
}

func (s *Store) queryUnits(query string, args ...any) ([]models.Unit, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	units := []models.Unit{}
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// GetUnit returns a unit by ID, or nil if it does not exist
func (s *Store) GetUnit(id string) (*models.Unit, error) {
	row := s.db.QueryRow(`SELECT `+unitColumns+` FROM units WHERE id = ?`, id)
	u, err := scanUnit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CountUnits returns the number of stored units
func (s *Store) CountUnits() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM units`).Scan(&n)
	return n, err
}

// ReplaceUnits swaps the whole unit table for units in a transaction
func (s *Store) ReplaceUnits(units []models.Unit) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM units`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO units (position, ` + unitColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, u := range units {
		traits, err := json.Marshal(u.Traits)
		if err != nil {
			return err
		}
		data, err := json.Marshal(unitData{
			DPS:         u.DPS,
			Notes:       u.Notes,
			ShinyValue:  u.ShinyValue,
			Exists:      u.Exists,
			ShinyExists: u.ShinyExists,
		})
		if err != nil {
			return err
		}
		_, err = stmt.Exec(i, u.ID, u.Game, u.Slug, u.Name, u.Image, u.Rarity, u.Value,
			u.Demand, u.DemandScore, u.Trend, u.ObtainedFrom, string(traits), string(data))
		if err != nil {
			return fmt.Errorf("insert unit %s: %w", u.ID, err)
		}
	}

	return tx.Commit()
}

// --- Codes ---

// GetCodes returns every redemption code in import order
func (s *Store) GetCodes() ([]models.Code, error) {
	rows, err := s.db.Query(`SELECT code, reward, status, added_date FROM codes ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := []models.Code{}
	for rows.Next() {
		var c models.Code
		var added sql.NullString
		if err := rows.Scan(&c.Code, &c.Reward, &c.Status, &added); err != nil {
			return nil, err
		}
		c.AddedDate = added.String
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// ReplaceCodes swaps the whole code table for codes in a transaction
func (s *Store) ReplaceCodes(codes []models.Code) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM codes`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO codes (code, position, reward, status, added_date)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, c := range codes {
		if _, err := stmt.Exec(c.Code, i, c.Reward, c.Status, c.AddedDate); err != nil {
			return fmt.Errorf("insert code %s: %w", c.Code, err)
		}
	}

	return tx.Commit()
}
