package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore writes the audit trail to a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates a SQLite audit database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite audit: empty path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func createSQLiteSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS ingests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		document TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		date_count INTEGER NOT NULL,
		warning TEXT,
		recorded_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_ingests_session ON ingests(session_id);

	CREATE TABLE IF NOT EXISTS searches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		query TEXT NOT NULL,
		alias TEXT,
		score REAL,
		duty TEXT NOT NULL,
		give_date TEXT,
		take_dates TEXT,
		outcome TEXT NOT NULL,
		candidates INTEGER NOT NULL,
		recorded_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_searches_session ON searches(session_id);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordIngest stores one ingestion attempt.
func (s *SQLiteStore) RecordIngest(ctx context.Context, rec Ingest) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ingests (session_id, document, row_count, date_count, warning, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Session, rec.Document, rec.Rows, rec.Dates, rec.Warning, stamp(rec.At).Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert ingest: %w", err)
	}
	return nil
}

// RecordSearch stores one swap search.
func (s *SQLiteStore) RecordSearch(ctx context.Context, rec Search) error {
	takes, err := json.Marshal(rec.TakeDates)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO searches (session_id, query, alias, score, duty, give_date, take_dates, outcome, candidates, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Session, rec.Query, rec.Alias, rec.Score, rec.Duty, rec.GiveDate, string(takes),
		rec.Outcome, rec.Candidates, stamp(rec.At).Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert search: %w", err)
	}
	return nil
}

// ListIngests returns the most recent ingestions, newest first.
func (s *SQLiteStore) ListIngests(ctx context.Context, limit int) ([]Ingest, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, document, row_count, date_count, COALESCE(warning, ''), recorded_at FROM ingests ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ingest
	for rows.Next() {
		var (
			rec Ingest
			at  string
		)
		if err := rows.Scan(&rec.Session, &rec.Document, &rec.Rows, &rec.Dates, &rec.Warning, &at); err != nil {
			return nil, err
		}
		rec.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListSearches returns the most recent searches, newest first.
func (s *SQLiteStore) ListSearches(ctx context.Context, limit int) ([]Search, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, query, COALESCE(alias, ''), COALESCE(score, 0), duty, COALESCE(give_date, ''),
		COALESCE(take_dates, '[]'), outcome, candidates, recorded_at FROM searches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Search
	for rows.Next() {
		var (
			rec   Search
			takes string
			at    string
		)
		if err := rows.Scan(&rec.Session, &rec.Query, &rec.Alias, &rec.Score, &rec.Duty, &rec.GiveDate,
			&takes, &rec.Outcome, &rec.Candidates, &at); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(takes), &rec.TakeDates)
		rec.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, rec)
	}
	return out, rows.Err()
}
