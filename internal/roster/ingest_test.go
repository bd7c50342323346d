package roster

import (
	"errors"
	"testing"
)

// fakePage is one page of a fakeDoc. Errors simulate extraction failures.
type fakePage struct {
	text     string
	table    Table
	textErr  error
	tableErr error
}

type fakeDoc []fakePage

func (d fakeDoc) PageCount() int { return len(d) }

func (d fakeDoc) PageText(p int) (string, error) {
	return d[p].text, d[p].textErr
}

func (d fakeDoc) PageTable(p int) (Table, error) {
	return d[p].table, d[p].tableErr
}

const marchHeader = "LISTADO CUADRANTE DE LA PROGRAMACIÓN\nPeriodo 01/03/2025-31/03/2025"

func spread(info string, first, second []string) (fakePage, fakePage) {
	a := Table{{"Info"}, append([]string{info}, first...)}
	b := Table{{"Info"}, append([]string{info}, second...)}
	return fakePage{table: a}, fakePage{table: b}
}

func TestIngestDocument(t *testing.T) {
	p0, p1 := spread("JUAN PEREZ\nCOPILOTO", []string{"SA", "CO MAD 0800 1000 BCN"}, []string{"LI"})
	p0.text = "cover page"
	p1.text = marchHeader
	p2, p3 := spread("ANA RUIZ\nCOMANDANTE", []string{"IM"}, nil)
	trailing := fakePage{table: Table{{"Info"}, {"LUIS GOMEZ", "SA"}}}

	doc := fakeDoc{p0, p1, p2, p3, trailing}
	ing, err := IngestDocument("march.pdf", doc)
	if err != nil {
		t.Fatalf("IngestDocument: %v", err)
	}
	if len(ing.Dates) != 31 {
		t.Errorf("Dates = %d, want 31", len(ing.Dates))
	}
	if len(ing.Rows) != 2 {
		t.Fatalf("Rows = %d, want 2 (odd trailing page skipped)", len(ing.Rows))
	}
	if got := ing.Rows[0].Activities["2025-03-03"]; got != "LI" {
		t.Errorf("third date = %q, want LI", got)
	}
	if ing.Rows[1].Alias != "ANA RUIZ" {
		t.Errorf("second row alias = %q", ing.Rows[1].Alias)
	}
}

func TestIngestDocumentSkipsBadSpreads(t *testing.T) {
	p0, p1 := spread("JUAN PEREZ", []string{"SA"}, nil)
	p0.text = marchHeader
	bad := fakePage{tableErr: errors.New("no grid")}
	headerOnly := fakePage{table: Table{{"Info"}}}

	doc := fakeDoc{bad, headerOnly, p0, p1}
	doc[0].text = marchHeader

	ing, err := IngestDocument("march.pdf", doc)
	if err != nil {
		t.Fatalf("IngestDocument: %v", err)
	}
	if len(ing.Rows) != 1 || ing.Rows[0].Alias != "JUAN PEREZ" {
		t.Errorf("Rows = %+v", ing.Rows)
	}
}

func TestIngestDocumentErrors(t *testing.T) {
	p0, p1 := spread("JUAN PEREZ", []string{"SA"}, nil)

	noHeader := fakeDoc{p0, p1}
	noHeader[0].text = "01/03/2025-31/03/2025" // range without the marker

	markerNoRange := fakeDoc{p0, p1}
	markerNoRange[0].text = "LISTADO CUADRANTE DE LA PROGRAMACIÓN"

	noTables := fakeDoc{{text: marchHeader}, {text: ""}}

	unreadable := fakeDoc{{textErr: errors.New("encrypted")}, {textErr: errors.New("encrypted")}}

	tests := []struct {
		name string
		doc  Document
		want error
	}{
		{"nil document", nil, ErrUnreadable},
		{"no pages", fakeDoc{}, ErrUnreadable},
		{"unreadable pages", unreadable, ErrUnreadable},
		{"range without marker", noHeader, ErrNoDateRange},
		{"marker without range", markerNoRange, ErrNoDateRange},
		{"no tables", noTables, ErrNoTables},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ing, err := IngestDocument("doc.pdf", tt.doc)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			var ie *IngestError
			if !errors.As(err, &ie) || ie.Document != "doc.pdf" {
				t.Errorf("error does not name the document: %v", err)
			}
			if len(ing.Rows) != 0 {
				t.Errorf("failed document contributed %d rows", len(ing.Rows))
			}
		})
	}
}

func TestIngestDocumentHeaderOnLaterPage(t *testing.T) {
	p0, p1 := spread("JUAN PEREZ", []string{"SA"}, nil)
	p2, p3 := spread("ANA RUIZ", []string{"LI"}, nil)
	p0.text = "LISTADO CUADRANTE DE LA PROGRAMACIÓN (sin fechas)"
	p2.text = "listado cuadrante de la programacion 01/04/2025-30/04/2025"

	ing, err := IngestDocument("april.pdf", fakeDoc{p0, p1, p2, p3})
	if err != nil {
		t.Fatalf("IngestDocument: %v", err)
	}
	if len(ing.Dates) != 30 {
		t.Errorf("Dates = %d, want 30", len(ing.Dates))
	}
	if got := ing.Rows[0].Activities["2025-04-01"]; got != "SA" {
		t.Errorf("first date = %q, want SA", got)
	}
}
