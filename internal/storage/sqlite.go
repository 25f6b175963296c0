package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/meur/gearforge/internal/models"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("not found")

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

// OpenReadOnly opens an existing database without creating it or running
// migrations. A missing file yields an error wrapping os.ErrNotExist.
func OpenReadOnly(dbPath string) (*Store, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *Store) Ping() error {
	return s.db.Ping()
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			icon_url TEXT NOT NULL DEFAULT '',
			sheets TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			game_id TEXT NOT NULL REFERENCES games(id),
			sheet_id TEXT NOT NULL,
			name TEXT NOT NULL,
			image_id TEXT NOT NULL,
			icon TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			data TEXT NOT NULL DEFAULT '{}',
			UNIQUE(game_id, sheet_id, name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_sheet ON items(game_id, sheet_id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_name ON items(game_id, name)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// --- Games ---

// GetGames returns all games
func (s *Store) GetGames() ([]models.Game, error) {
	rows, err := s.db.Query(`
		SELECT id, name, description, icon_url, sheets, created_at
		FROM games ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := []models.Game{}
	for rows.Next() {
		var g models.Game
		var sheets string
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.IconURL, &sheets, &g.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(sheets), &g.Sheets); err != nil {
			return nil, fmt.Errorf("decode sheets of %s: %w", g.ID, err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// GetGame returns a game by ID, or nil when it does not exist
func (s *Store) GetGame(id string) (*models.Game, error) {
	var g models.Game
	var sheets string
	err := s.db.QueryRow(`
		SELECT id, name, description, icon_url, sheets, created_at
		FROM games WHERE id = ?
	`, id).Scan(&g.ID, &g.Name, &g.Description, &g.IconURL, &sheets, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(sheets), &g.Sheets); err != nil {
		return nil, fmt.Errorf("decode sheets of %s: %w", g.ID, err)
	}
	return &g, nil
}

// SaveGame creates a game or refreshes its metadata
func (s *Store) SaveGame(g *models.Game) error {
	sheets, err := json.Marshal(g.Sheets)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO games (id, name, description, icon_url, sheets)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			icon_url = excluded.icon_url,
			sheets = excluded.sheets
	`, g.ID, g.Name, g.Description, g.IconURL, sheets)
	return err
}

// --- Items ---

const itemColumns = `id, game_id, sheet_id, name, image_id, icon, category, data`

func scanItem(row interface{ Scan(...any) error }) (models.Item, error) {
	var item models.Item
	var data string
	err := row.Scan(&item.ID, &item.GameID, &item.SheetID, &item.Name,
		&item.ImageID, &item.Icon, &item.Category, &data)
	if err != nil {
		return item, err
	}
	if err := json.Unmarshal([]byte(data), &item.Data); err != nil {
		return item, fmt.Errorf("decode data of %s: %w", item.ID, err)
	}
	return item, nil
}

// GetItems returns items for a game, optionally filtered by sheet
func (s *Store) GetItems(gameID, sheetID string) ([]models.Item, error) {
	var rows *sql.Rows
	var err error

	if sheetID != "" {
		rows, err = s.db.Query(`SELECT `+itemColumns+`
			FROM items WHERE game_id = ? AND sheet_id = ? ORDER BY name`, gameID, sheetID)
	} else {
		rows, err = s.db.Query(`SELECT `+itemColumns+`
			FROM items WHERE game_id = ? ORDER BY name`, gameID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetItemByName returns the item of a game with exactly this name, limited to
// one sheet when sheetID is set
func (s *Store) GetItemByName(gameID, sheetID, name string) (*models.Item, error) {
	var row *sql.Row
	if sheetID != "" {
		row = s.db.QueryRow(`SELECT `+itemColumns+`
			FROM items WHERE game_id = ? AND sheet_id = ? AND name = ?`, gameID, sheetID, name)
	} else {
		row = s.db.QueryRow(`SELECT `+itemColumns+`
			FROM items WHERE game_id = ? AND name = ? ORDER BY sheet_id LIMIT 1`, gameID, name)
	}

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ItemImageIDs returns the name to image id mapping of a game, optionally
// filtered by sheet
func (s *Store) ItemImageIDs(gameID, sheetID string) (map[string]string, error) {
	items, err := s.GetItems(gameID, sheetID)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(items))
	for _, item := range items {
		ids[item.Name] = item.ImageID
	}
	return ids, nil
}

// ReplaceSheetItems swaps every item of a sheet for the given ones in a transaction
func (s *Store) ReplaceSheetItems(gameID, sheetID string, items []models.Item) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM items WHERE game_id = ? AND sheet_id = ?`, gameID, sheetID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO items (` + itemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		if item.Data == nil {
			item.Data = map[string]interface{}{}
		}
		data, err := json.Marshal(item.Data)
		if err != nil {
			return err
		}
		_, err = stmt.Exec(item.ID, gameID, sheetID, item.Name,
			item.ImageID, item.Icon, item.Category, string(data))
		if err != nil {
			return fmt.Errorf("insert %s: %w", item.Name, err)
		}
	}

	return tx.Commit()
}
