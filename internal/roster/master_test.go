package roster

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func row(info string, activities map[string]string) CrewRow {
	r := NewCrewRow(info)
	for k, v := range activities {
		r.Activities[k] = v
	}
	return r
}

func TestBuilderMergesByAlias(t *testing.T) {
	var b Builder
	b.Add(Ingested{
		Name:  "march",
		Dates: mustDates(t, "01/03/2025-02/03/2025"),
		Rows: []CrewRow{
			row("JUAN PEREZ\nCOPILOTO", map[string]string{"2025-03-01": "SA"}),
			row("ANA RUIZ\nCOMANDANTE", map[string]string{"2025-03-02": "LI"}),
		},
	})
	b.Add(Ingested{
		Name:  "april",
		Dates: mustDates(t, "01/04/2025-02/04/2025"),
		Rows: []CrewRow{
			row("Juan Pérez\nCopiloto", map[string]string{"2025-04-02": "CO MAD 0800 1000 BCN"}),
		},
	})

	m := b.Build()
	if m.Len() != 2 {
		t.Fatalf("Len = %d, want 2", m.Len())
	}
	if got := m.Aliases(); !reflect.DeepEqual(got, []string{"JUAN PEREZ", "ANA RUIZ"}) {
		t.Errorf("Aliases = %v (first-seen order expected)", got)
	}

	juan, ok := m.Lookup("juan  pérez")
	if !ok {
		t.Fatal("Lookup JUAN PEREZ failed")
	}
	want := map[string]string{"2025-03-01": "SA", "2025-04-02": "CO MAD 0800 1000 BCN"}
	if !reflect.DeepEqual(juan.Activities, want) {
		t.Errorf("Activities = %v, want %v", juan.Activities, want)
	}
	if juan.Info != "JUAN PEREZ\nCOPILOTO" {
		t.Errorf("Info = %q, want the first document's block", juan.Info)
	}

	wantDates := []string{"2025-03-01", "2025-03-02", "2025-04-01", "2025-04-02"}
	if !reflect.DeepEqual(m.Dates(), wantDates) {
		t.Errorf("Dates = %v, want %v", m.Dates(), wantDates)
	}
}

func TestBuilderFirstWriteWins(t *testing.T) {
	var b Builder
	b.Add(Ingested{Rows: []CrewRow{row("JUAN PEREZ", map[string]string{"2025-03-01": "SA"})}})
	b.Add(Ingested{Rows: []CrewRow{row("JUAN PEREZ", map[string]string{"2025-03-01": "CO MAD 0800 1000 BCN", "2025-03-02": "LI"})}})

	juan, _ := b.Build().Lookup("JUAN PEREZ")
	if got := juan.Activities["2025-03-01"]; got != "SA" {
		t.Errorf("overlapping date = %q, want first document's SA", got)
	}
	if got := juan.Activities["2025-03-02"]; got != "LI" {
		t.Errorf("new date = %q, want LI", got)
	}
}

func TestBuildMasterWarnings(t *testing.T) {
	p0, p1 := spread("JUAN PEREZ", []string{"SA"}, nil)
	p0.text = marchHeader
	good := fakeDoc{p0, p1}
	missingRange := fakeDoc{{text: "nothing"}, {text: "here"}}

	m, warnings := BuildMaster([]NamedDocument{
		{Name: "bad.pdf", Document: missingRange},
		{Name: "good.pdf", Document: good},
	})
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
	if len(warnings) != 1 {
		t.Fatalf("warnings = %d, want 1", len(warnings))
	}
	w := warnings[0]
	if w.Document != "bad.pdf" || !errors.Is(w.Err, ErrNoDateRange) {
		t.Errorf("warning = %+v", w)
	}
	if w.String() != "bad.pdf: no date range header was found" {
		t.Errorf("String() = %q", w.String())
	}

	empty, warnings := BuildMaster([]NamedDocument{{Name: "bad.pdf", Document: missingRange}})
	if !empty.Empty() || len(warnings) != 1 {
		t.Errorf("all-failing batch: empty=%v warnings=%d", empty.Empty(), len(warnings))
	}
}

func TestDateColumns(t *testing.T) {
	var b Builder
	b.Add(Ingested{Dates: mustDates(t, "30/12/2024-02/01/2025")})
	m := b.Build()

	tests := []struct {
		name   string
		filter DateFilter
		want   []string
	}{
		{"all", DateFilter{}, []string{"2024-12-30", "2024-12-31", "2025-01-01", "2025-01-02"}},
		{"year prefix", DateFilter{YearPrefix: "2025"}, []string{"2025-01-01", "2025-01-02"}},
		{"strictly after", DateFilter{After: time.Date(2024, 12, 31, 15, 0, 0, 0, time.UTC)}, []string{"2025-01-01", "2025-01-02"}},
		{"both", DateFilter{YearPrefix: "2025", After: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}, []string{"2025-01-02"}},
		{"none left", DateFilter{YearPrefix: "2026"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.DateColumns(tt.filter); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DateColumns = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNilMasterTable(t *testing.T) {
	var m *MasterTable
	if !m.Empty() || m.Len() != 0 || m.Rows() != nil || m.Dates() != nil {
		t.Error("nil table should behave as empty")
	}
	if _, ok := m.Lookup("X"); ok {
		t.Error("Lookup on nil table succeeded")
	}
	if len(m.Aliases()) != 0 {
		t.Error("Aliases on nil table not empty")
	}
}
