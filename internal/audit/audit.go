// Package audit keeps an optional write-only trail of ingestions and searches.
// Nothing in the matching path reads it back.
package audit

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Ingest records one document ingestion attempt.
type Ingest struct {
	Session  string
	Document string
	Rows     int
	Dates    int
	Warning  string // empty on success
	At       time.Time
}

// Search records one swap search.
type Search struct {
	Session    string
	Query      string
	Alias      string
	Score      float64
	Duty       string
	GiveDate   string
	TakeDates  []string
	Outcome    string
	Candidates int
	At         time.Time
}

// Store is an audit sink.
type Store interface {
	RecordIngest(ctx context.Context, rec Ingest) error
	RecordSearch(ctx context.Context, rec Search) error
	Close() error
}

// Lister is implemented by stores that can list their ingest trail.
type Lister interface {
	ListIngests(ctx context.Context, limit int) ([]Ingest, error)
}

// Nop discards every record.
type Nop struct{}

func (Nop) RecordIngest(context.Context, Ingest) error { return nil }
func (Nop) RecordSearch(context.Context, Search) error { return nil }
func (Nop) Close() error                               { return nil }

// Drivers accepted by Open.
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects and configures the audit backend.
type Config struct {
	Driver     string
	SQLitePath string
	Postgres   PostgresConfig
}

// Open returns the store selected by cfg.Driver. An empty driver means none.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", DriverNone:
		return Nop{}, nil
	case DriverSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case DriverPostgres:
		pg, err := OpenPostgres(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if err := pg.CreateSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown audit driver %q", cfg.Driver)
	}
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
