package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import for side-effects only

	"mspro-labs/menu-buddy/internal/models"
)

// Connect opens a connection to the SQLite database and ensures the schema exists.
// It automatically applies recommended settings for concurrency (WAL mode).
func Connect(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database dir: %w", err)
		}
	}

	// Use robust connection settings to prevent "database locked" errors
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err = createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return db, nil
}

// createSchema is private as it's only called by Connect.
func createSchema(db *sql.DB) error {
	// Snapshot of the last completed crawl, in output order
	menuTable := `
	CREATE TABLE IF NOT EXISTS menu_item (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  position INTEGER NOT NULL,
	  location TEXT NOT NULL,
	  section TEXT NOT NULL,
	  name TEXT NOT NULL,
	  serving_size TEXT,
	  calories TEXT,
	  total_fat TEXT,
	  protein TEXT,
	  carbs TEXT,
	  sugars TEXT,
	  ingredients TEXT,
	  allergens TEXT,
	  raw_nutrition_text TEXT,
	  embed_text TEXT NOT NULL,
	  scraped_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_menu_item_embed_text ON menu_item(embed_text);
	`
	if _, err := db.Exec(menuTable); err != nil {
		return err
	}

	// Vectors outlive snapshots so an unchanged dish is only embedded once
	embeddingTable := `
	CREATE TABLE IF NOT EXISTS item_embedding (
		embed_text TEXT PRIMARY KEY,
		embedding BLOB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(embeddingTable); err != nil {
		return err
	}

	// Search History Table (for local caching of AI queries)
	historyTable := `
	CREATE TABLE IF NOT EXISTS search_history (
		query_text TEXT PRIMARY KEY,
		embedding BLOB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(historyTable); err != nil {
		return err
	}

	return nil
}

// EmbedText is the text a menu item is embedded under.
func EmbedText(it models.MenuItem) string {
	return fmt.Sprintf("Menu Item: %s\nLocation: %s\nSection: %s\nIngredients: %s",
		it.Name, it.Location, it.Section, models.Value(it.Ingredients))
}

// ReplaceMenu swaps the stored snapshot for items in a single transaction.
// It returns the number of rows inserted.
func ReplaceMenu(db *sql.DB, items []models.MenuItem) (int64, error) {
	insertSQL := `
	INSERT INTO menu_item (
	  position, location, section, name, serving_size, calories, total_fat,
	  protein, carbs, sugars, ingredients, allergens, raw_nutrition_text, embed_text
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM menu_item;`); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to clear previous snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	var totalAffected int64 = 0
	for i, it := range items {
		res, err := stmt.ExecContext(ctx,
			i,
			it.Location,
			it.Section,
			it.Name,
			nullable(it.ServingSize),
			nullable(it.Calories),
			nullable(it.TotalFat),
			nullable(it.Protein),
			nullable(it.Carbs),
			nullable(it.Sugars),
			nullable(it.Ingredients),
			nullable(it.Allergens),
			nullable(it.RawNutritionText),
			EmbedText(it),
		)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to insert %s / %s: %w", it.Location, it.Name, err)
		}
		rows, _ := res.RowsAffected()
		totalAffected += rows
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	return totalAffected, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// GetMenu returns the stored snapshot in crawl order.
func GetMenu(db *sql.DB) ([]models.MenuItem, error) {
	rows, err := db.Query(`
		SELECT location, section, name, serving_size, calories, total_fat,
		       protein, carbs, sugars, ingredients, allergens, raw_nutrition_text
		FROM menu_item
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var it models.MenuItem
		var serving, cal, fat, protein, carbs, sugars, ingredients, allergens, raw sql.NullString
		if err := rows.Scan(&it.Location, &it.Section, &it.Name, &serving, &cal, &fat,
			&protein, &carbs, &sugars, &ingredients, &allergens, &raw); err != nil {
			return nil, err
		}
		it.ServingSize, it.Calories, it.TotalFat = fromNull(serving), fromNull(cal), fromNull(fat)
		it.Protein, it.Carbs, it.Sugars = fromNull(protein), fromNull(carbs), fromNull(sugars)
		it.Ingredients, it.Allergens, it.RawNutritionText = fromNull(ingredients), fromNull(allergens), fromNull(raw)
		items = append(items, it)
	}
	return items, rows.Err()
}

// --- Embedding & Search Helpers ---

// GetUnembeddedTexts returns the distinct embed texts in the snapshot that
// have no stored vector yet, in crawl order.
func GetUnembeddedTexts(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`
		SELECT m.embed_text
		FROM menu_item m
		LEFT JOIN item_embedding e ON e.embed_text = m.embed_text
		WHERE e.embed_text IS NULL
		GROUP BY m.embed_text
		ORDER BY MIN(m.position)
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err == nil {
			texts = append(texts, s)
		}
	}
	return texts, rows.Err()
}

// SaveEmbedding stores the generated vector blob for an embed text.
func SaveEmbedding(db *sql.DB, text string, embedding []byte) error {
	_, err := db.Exec("INSERT OR REPLACE INTO item_embedding (embed_text, embedding) VALUES (?, ?)", text, embedding)
	return err
}

// ItemVector is a snapshot row joined with its embedding.
type ItemVector struct {
	Location string
	Section  string
	Name     string
	Calories string
	Protein  string
	Vector   []byte
}

// GetItemVectors returns every snapshot row that has an embedding.
func GetItemVectors(db *sql.DB) ([]ItemVector, error) {
	rows, err := db.Query(`
		SELECT m.location, m.section, m.name, COALESCE(m.calories, ''), COALESCE(m.protein, ''), e.embedding
		FROM menu_item m
		JOIN item_embedding e ON e.embed_text = m.embed_text
		ORDER BY m.position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ItemVector
	for rows.Next() {
		var iv ItemVector
		if err := rows.Scan(&iv.Location, &iv.Section, &iv.Name, &iv.Calories, &iv.Protein, &iv.Vector); err == nil {
			results = append(results, iv)
		}
	}
	return results, rows.Err()
}

// GetCachedQuery tries to find a previously searched query vector.
func GetCachedQuery(db *sql.DB, text string) ([]byte, error) {
	var blob []byte
	err := db.QueryRow("SELECT embedding FROM search_history WHERE query_text = ?", text).Scan(&blob)
	return blob, err
}

// SaveCachedQuery saves a new query and its vector to the history table.
func SaveCachedQuery(db *sql.DB, text string, blob []byte) error {
	_, err := db.Exec("INSERT OR IGNORE INTO search_history (query_text, embedding) VALUES (?, ?)", text, blob)
	return err
}

// --- History Management for search ---

type HistoryEntry struct {
	QueryText string
	CreatedAt time.Time
}

// ListSearchHistory returns all cached queries, newest first.
func ListSearchHistory(db *sql.DB) ([]HistoryEntry, error) {
	rows, err := db.Query("SELECT query_text, created_at FROM search_history ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.QueryText, &e.CreatedAt); err == nil {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// ClearSearchHistory removes a specific query from the cache.
func ClearSearchHistory(db *sql.DB, queryText string) (int64, error) {
	res, err := db.Exec("DELETE FROM search_history WHERE query_text = ?", queryText)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClearAllSearchHistory wipes the entire cache.
func ClearAllSearchHistory(db *sql.DB) (int64, error) {
	res, err := db.Exec("DELETE FROM search_history")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
