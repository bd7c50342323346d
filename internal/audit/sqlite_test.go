package audit

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteIngests(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	at := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	recs := []Ingest{
		{Session: "s1", Document: "marzo.pdf", Rows: 42, Dates: 31, At: at},
		{Session: "s1", Document: "abril.pdf", Warning: "no date range header was found", At: at.Add(time.Minute)},
	}
	for _, rec := range recs {
		if err := s.RecordIngest(ctx, rec); err != nil {
			t.Fatalf("RecordIngest: %v", err)
		}
	}

	got, err := s.ListIngests(ctx, 10)
	if err != nil {
		t.Fatalf("ListIngests: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListIngests = %d, want 2", len(got))
	}
	if got[0].Document != "abril.pdf" || got[0].Warning == "" {
		t.Errorf("newest = %+v", got[0])
	}
	if got[1].Rows != 42 || got[1].Dates != 31 || !got[1].At.Equal(at) {
		t.Errorf("oldest = %+v", got[1])
	}
}

func TestSQLiteSearches(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	rec := Search{
		Session:    "s1",
		Query:      "LUIS PEDRO",
		Alias:      "PEDRO LUIS",
		Score:      100,
		Duty:       "flight",
		GiveDate:   "2025-03-10",
		TakeDates:  []string{"2025-03-12", "2025-03-14"},
		Outcome:    "found",
		Candidates: 3,
	}
	if err := s.RecordSearch(ctx, rec); err != nil {
		t.Fatalf("RecordSearch: %v", err)
	}

	got, err := s.ListSearches(ctx, 0)
	if err != nil {
		t.Fatalf("ListSearches: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListSearches = %d, want 1", len(got))
	}
	if !reflect.DeepEqual(got[0].TakeDates, rec.TakeDates) {
		t.Errorf("TakeDates = %v, want %v", got[0].TakeDates, rec.TakeDates)
	}
	if got[0].Alias != rec.Alias || got[0].Candidates != 3 || got[0].At.IsZero() {
		t.Errorf("search = %+v", got[0])
	}
}

func TestSQLiteReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RecordIngest(context.Background(), Ingest{Session: "s", Document: "d"}); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.ListIngests(context.Background(), 5)
	if err != nil || len(got) != 1 {
		t.Errorf("after reopen: %d records, err %v", len(got), err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	for _, driver := range []string{"", "none", "NONE"} {
		s, err := Open(ctx, Config{Driver: driver})
		if err != nil {
			t.Fatalf("Open(%q): %v", driver, err)
		}
		if _, ok := s.(Nop); !ok {
			t.Errorf("Open(%q) = %T, want Nop", driver, s)
		}
	}

	s, err := Open(ctx, Config{Driver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "a.db")})
	if err != nil {
		t.Fatalf("Open(sqlite): %v", err)
	}
	if _, ok := s.(Lister); !ok {
		t.Errorf("sqlite store does not implement Lister")
	}
	_ = s.Close()

	if _, err := Open(ctx, Config{Driver: "sqlite"}); err == nil {
		t.Error("expected error for empty sqlite path")
	}
	if _, err := Open(ctx, Config{Driver: "clickhouse"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestNop(t *testing.T) {
	var s Store = Nop{}
	ctx := context.Background()
	if err := s.RecordIngest(ctx, Ingest{}); err != nil {
		t.Error(err)
	}
	if err := s.RecordSearch(ctx, Search{}); err != nil {
		t.Error(err)
	}
	if err := s.Close(); err != nil {
		t.Error(err)
	}
}
