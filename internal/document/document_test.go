package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"crewswap/internal/roster"
)

const marchDump = `{
  "name": "marzo.pdf",
  "pages": [
    {"text": "LISTADO CUADRANTE DE LA PROGRAMACIÓN 01/03/2025-31/03/2025",
     "table": [["Info", "1", "2"], ["JUAN PEREZ\nCOPILOTO", "SA", "CO MAD 0800 1000 BCN L00745"]]},
    {"text": "", "table": [["Info", "3"], ["JUAN PEREZ", "LI"]]},
    {"text": "", "error": "no ruled lines"}
  ]
}`

func TestDecode(t *testing.T) {
	f, err := Decode(strings.NewReader(marchDump))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.Name != "marzo.pdf" || f.PageCount() != 3 {
		t.Fatalf("File = %q with %d pages", f.Name, f.PageCount())
	}

	table, err := f.PageTable(1)
	if err != nil {
		t.Fatalf("PageTable(1): %v", err)
	}
	if len(table) != 2 || table[1][1] != "LI" {
		t.Errorf("PageTable(1) = %v", table)
	}

	if _, err := f.PageText(2); err == nil {
		t.Error("expected error for failed page")
	}
	if _, err := f.PageTable(7); !errors.Is(err, ErrPageRange) {
		t.Errorf("PageTable(7) err = %v, want ErrPageRange", err)
	}
}

func TestFileIngests(t *testing.T) {
	f, err := Decode(strings.NewReader(marchDump))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	ing, err := roster.IngestDocument(f.Name, f)
	if err != nil {
		t.Fatalf("IngestDocument: %v", err)
	}
	if len(ing.Rows) != 1 {
		t.Fatalf("Rows = %d, want 1", len(ing.Rows))
	}
	juan := ing.Rows[0]
	if juan.Activities["2025-03-03"] != "LI" || juan.Position != roster.Copilot {
		t.Errorf("row = %+v", juan)
	}
}

func TestDecodeBundle(t *testing.T) {
	input := `{"documents": [` + marchDump + `, {"pages": []}]}`
	b, err := DecodeBundle(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeBundle: %v", err)
	}

	named := b.Named()
	if len(named) != 2 {
		t.Fatalf("Named = %d, want 2", len(named))
	}
	if named[0].Name != "marzo.pdf" || named[1].Name != "document-2" {
		t.Errorf("names = %q, %q", named[0].Name, named[1].Name)
	}

	m, warnings := roster.BuildMaster(named)
	if m.Len() != 1 || len(warnings) != 1 {
		t.Errorf("BuildMaster: rows=%d warnings=%d", m.Len(), len(warnings))
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abril.json")
	if err := os.WriteFile(path, []byte(`{"pages": []}`), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Name != "abril.json" {
		t.Errorf("Name = %q, want file base name", f.Name)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode(strings.NewReader("not json")); err == nil {
		t.Error("expected error")
	}
}
