package roster

import (
	"testing"
	"time"

	"crewswap/internal/daterange"
)

func mustDates(t *testing.T, text string) []time.Time {
	t.Helper()
	dates, ok := daterange.Extract(text)
	if !ok {
		t.Fatalf("bad range %q", text)
	}
	return dates
}

func TestCombineTables(t *testing.T) {
	dates := mustDates(t, "01/03/2025-04/03/2025")

	a := Table{
		{"Info", "1", "2"},
		{"JUAN PEREZ\nCOPILOTO", "SA", "CO MAD 0800 1000 BCN L00745"},
	}
	b := Table{
		{"Info", "3", "4"},
		{"JUAN PEREZ", "", "LI"},
	}

	rows := CombineTables(a, b, dates)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row := rows[0]
	if row.Alias != "JUAN PEREZ" || row.Position != Copilot {
		t.Errorf("row = %q/%q", row.Alias, row.Position)
	}

	want := map[string]string{
		"2025-03-01": "SA",
		"2025-03-02": "CO MAD 0800 1000 BCN L00745",
		"2025-03-04": "LI",
	}
	if len(row.Activities) != len(want) {
		t.Errorf("Activities = %v, want %v", row.Activities, want)
	}
	for date, cell := range want {
		if row.Activities[date] != cell {
			t.Errorf("Activities[%s] = %q, want %q", date, row.Activities[date], cell)
		}
	}
	if _, ok := row.Activities["2025-03-03"]; ok {
		t.Error("empty cell should not be stored")
	}
}

func TestCombineTablesHeaderOnly(t *testing.T) {
	dates := mustDates(t, "01/03/2025-02/03/2025")
	full := Table{{"Info", "1"}, {"JUAN PEREZ", "SA"}}
	header := Table{{"Info", "2"}}

	tests := []struct {
		name string
		a, b Table
	}{
		{"header-only b", full, header},
		{"header-only a", header, full},
		{"empty a", nil, full},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rows := CombineTables(tt.a, tt.b, dates); len(rows) != 0 {
				t.Errorf("got %d rows, want 0", len(rows))
			}
		})
	}
}

func TestCombineTablesColumnsAndDates(t *testing.T) {
	dates := mustDates(t, "01/03/2025-02/03/2025")

	a := Table{
		{"Info", "1", "2", "3"},
		{"ANA RUIZ", "SA", "LI", "CO"},
		{"   ", "SA", "SA", "SA"},
		{"LUIS GOMEZ", "IM"},
	}
	b := Table{
		{"Info"},
		{"ANA RUIZ"},
		{""},
	}

	rows := CombineTables(a, b, dates)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1 (blank info skipped, uneven tail dropped)", len(rows))
	}
	if len(rows[0].Activities) != 2 {
		t.Errorf("Activities = %v, want 2 entries (column beyond range dropped)", rows[0].Activities)
	}
}
