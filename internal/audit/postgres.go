package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

// PostgresStore writes the audit trail to PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool to PostgreSQL.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	poolCfg.MaxConns = 4
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

// CreateSchema creates the audit tables.
func (p *PostgresStore) CreateSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS crewswap_ingests (
		id          BIGSERIAL PRIMARY KEY,
		session_id  TEXT NOT NULL,
		document    TEXT NOT NULL,
		row_count   INTEGER NOT NULL,
		date_count  INTEGER NOT NULL,
		warning     TEXT,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_crewswap_ingests_session ON crewswap_ingests(session_id);

	CREATE TABLE IF NOT EXISTS crewswap_searches (
		id          BIGSERIAL PRIMARY KEY,
		session_id  TEXT NOT NULL,
		query       TEXT NOT NULL,
		alias       TEXT,
		score       DOUBLE PRECISION,
		duty        TEXT NOT NULL,
		give_date   TEXT,
		take_dates  TEXT[],
		outcome     TEXT NOT NULL,
		candidates  INTEGER NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_crewswap_searches_session ON crewswap_searches(session_id);
	`
	_, err := p.pool.Exec(ctx, schema)
	return err
}

// RecordIngest stores one ingestion attempt.
func (p *PostgresStore) RecordIngest(ctx context.Context, rec Ingest) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO crewswap_ingests (session_id, document, row_count, date_count, warning, recorded_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.Session, rec.Document, rec.Rows, rec.Dates, rec.Warning, stamp(rec.At))
	if err != nil {
		return fmt.Errorf("insert ingest: %w", err)
	}
	return nil
}

// RecordSearch stores one swap search.
func (p *PostgresStore) RecordSearch(ctx context.Context, rec Search) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO crewswap_searches (session_id, query, alias, score, duty, give_date, take_dates, outcome, candidates, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.Session, rec.Query, rec.Alias, rec.Score, rec.Duty, rec.GiveDate, rec.TakeDates,
		rec.Outcome, rec.Candidates, stamp(rec.At))
	if err != nil {
		return fmt.Errorf("insert search: %w", err)
	}
	return nil
}

// ListIngests returns the most recent ingestions, newest first.
func (p *PostgresStore) ListIngests(ctx context.Context, limit int) ([]Ingest, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.pool.Query(ctx,
		`SELECT session_id, document, row_count, date_count, COALESCE(warning, ''), recorded_at
		FROM crewswap_ingests ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ingest
	for rows.Next() {
		var rec Ingest
		if err := rows.Scan(&rec.Session, &rec.Document, &rec.Rows, &rec.Dates, &rec.Warning, &rec.At); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
