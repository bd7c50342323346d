package audit

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"
)

// setupTestPostgres returns nil when no PostgreSQL server is reachable.
func setupTestPostgres(t *testing.T) *PostgresStore {
	t.Helper()

	cfg := PostgresConfig{
		Host:     envOr("POSTGRES_HOST", "localhost"),
		Port:     5432,
		User:     envOr("POSTGRES_USER", "crewswap"),
		Password: envOr("POSTGRES_PASSWORD", "crewswap"),
		Database: envOr("POSTGRES_DB", "crewswap"),
	}
	if p, err := strconv.Atoi(os.Getenv("POSTGRES_PORT")); err == nil {
		cfg.Port = p
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	pg, err := OpenPostgres(ctx, cfg)
	if err != nil {
		return nil
	}
	if err := pg.CreateSchema(ctx); err != nil {
		_ = pg.Close()
		return nil
	}
	return pg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func TestPostgresRecordAndList(t *testing.T) {
	pg := setupTestPostgres(t)
	if pg == nil {
		t.Skip("No PostgreSQL connection available")
	}
	defer pg.Close()

	ctx := context.Background()
	session := "test-" + strconv.FormatInt(time.Now().UnixNano(), 36)

	if err := pg.RecordIngest(ctx, Ingest{Session: session, Document: "marzo.pdf", Rows: 10, Dates: 31}); err != nil {
		t.Fatalf("RecordIngest: %v", err)
	}
	if err := pg.RecordSearch(ctx, Search{Session: session, Query: "X", Duty: "flight", Outcome: "skipped", TakeDates: []string{"2025-03-01"}}); err != nil {
		t.Fatalf("RecordSearch: %v", err)
	}

	got, err := pg.ListIngests(ctx, 20)
	if err != nil {
		t.Fatalf("ListIngests: %v", err)
	}
	found := false
	for _, rec := range got {
		if rec.Session == session && rec.Document == "marzo.pdf" && rec.Rows == 10 {
			found = true
		}
	}
	if !found {
		t.Error("recorded ingest not listed")
	}
}
