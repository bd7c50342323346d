package roster

import (
	"errors"
	"fmt"
	"time"

	"crewswap/internal/daterange"
	"crewswap/internal/logger"
)

// Document is a paginated roster source: plain text and a ruled table per page.
type Document interface {
	PageCount() int
	PageText(page int) (string, error)
	PageTable(page int) (Table, error)
}

// Ingestion failures. A document failing with any of these contributes nothing.
var (
	ErrUnreadable  = errors.New("document unreadable")
	ErrNoTables    = errors.New("no ruled tables found")
	ErrNoDateRange = errors.New("no date range header found")
)

// IngestError names the document that failed.
type IngestError struct {
	Document string
	Err      error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Document, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

// Ingested is the row set of one fully assembled document.
type Ingested struct {
	Name  string
	Dates []time.Time
	Rows  []CrewRow
}

// IngestDocument finds the document's date range, then combines page spreads
// (0,1), (2,3), ... into crew rows. Spreads with a missing or header-only half
// are skipped; a trailing odd page has no partner and is skipped too.
func IngestDocument(name string, doc Document) (Ingested, error) {
	fail := func(err error) (Ingested, error) {
		return Ingested{}, &IngestError{Document: name, Err: err}
	}

	if doc == nil || doc.PageCount() <= 0 {
		return fail(ErrUnreadable)
	}

	dates, readable := findDateRange(name, doc)
	if readable == 0 {
		return fail(ErrUnreadable)
	}
	if dates == nil {
		return fail(ErrNoDateRange)
	}

	out := Ingested{Name: name, Dates: dates}
	for p := 0; p+1 < doc.PageCount(); p += 2 {
		a, errA := doc.PageTable(p)
		b, errB := doc.PageTable(p + 1)
		if errA != nil || errB != nil {
			logger.Debug("skipping spread", "document", name, "pages", fmt.Sprintf("%d-%d", p, p+1), "error", errors.Join(errA, errB))
			continue
		}
		rows := CombineTables(a, b, dates)
		if len(rows) == 0 {
			logger.Debug("skipping spread", "document", name, "pages", fmt.Sprintf("%d-%d", p, p+1), "reason", "no data rows")
			continue
		}
		out.Rows = append(out.Rows, rows...)
	}

	if len(out.Rows) == 0 {
		return fail(ErrNoTables)
	}
	return out, nil
}

// findDateRange returns the range from the first page carrying both the header
// marker and a valid range, and how many pages could be read at all.
func findDateRange(name string, doc Document) ([]time.Time, int) {
	readable := 0
	for p := 0; p < doc.PageCount(); p++ {
		text, err := doc.PageText(p)
		if err != nil {
			logger.Debug("unreadable page", "document", name, "page", p, "error", err)
			continue
		}
		readable++
		if !daterange.HasHeader(text) {
			continue
		}
		if dates, ok := daterange.Extract(text); ok {
			return dates, readable
		}
	}
	return nil, readable
}
