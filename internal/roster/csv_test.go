package roster

import (
	"bytes"
	"encoding/csv"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestCSVRoundTrip(t *testing.T) {
	var b Builder
	b.Add(Ingested{
		Dates: mustDates(t, "01/03/2025-03/03/2025"),
		Rows: []CrewRow{
			row("JUAN PEREZ\nCOPILOTO\nInstrucción", map[string]string{"2025-03-01": "SA", "2025-03-03": "CO MAD 0800 1000 BCN, L00745"}),
			row("ANA RUIZ\nCOMANDANTE", map[string]string{"2025-03-02": "IM"}),
		},
	})
	m := b.Build()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, m); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	if header != "Info,Alias,Position,2025-03-01,2025-03-02,2025-03-03" {
		t.Errorf("header = %q", header)
	}

	back, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if !reflect.DeepEqual(back.Dates(), m.Dates()) {
		t.Errorf("Dates = %v, want %v", back.Dates(), m.Dates())
	}
	if !reflect.DeepEqual(back.Rows(), m.Rows()) {
		t.Errorf("Rows = %+v\nwant %+v", back.Rows(), m.Rows())
	}
}

func TestReadCSVIgnoresForeignColumns(t *testing.T) {
	input := "Notes,Info,Alias,Position,2025-03-01\n" +
		"x,JUAN PEREZ,,COPILOT,SA\n" +
		"y,,GHOST,UNKNOWN,LI\n"

	m, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (blank info skipped)", m.Len())
	}
	juan, ok := m.Lookup("JUAN PEREZ")
	if !ok {
		t.Fatal("alias derived from info was not indexed")
	}
	if juan.Position != Copilot || juan.Activities["2025-03-01"] != "SA" {
		t.Errorf("row = %+v", juan)
	}
	if len(juan.Activities) != 1 {
		t.Errorf("foreign column leaked into activities: %v", juan.Activities)
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing alias column", "Info,Position\nX,UNKNOWN\n"},
		{"bad date column", "Info,Alias,Position,2025-13-45\nX,X,UNKNOWN,SA\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestReadCSVReportsLine(t *testing.T) {
	input := "Info,Alias,Position,2025-03-01\n" +
		"JUAN PEREZ,JUAN PEREZ,COPILOT,SA\n" +
		"ANA RUIZ,ANA RUIZ\n"

	_, err := ReadCSV(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected error for short record")
	}
	if !errors.Is(err, csv.ErrFieldCount) {
		t.Errorf("err = %v, want csv.ErrFieldCount", err)
	}
	if !strings.Contains(err.Error(), "artifact line 3") {
		t.Errorf("err = %q, want it to name artifact line 3", err)
	}
}
