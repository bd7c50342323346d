package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jszwec/csvutil"

	"crewswap/internal/daterange"
	"crewswap/internal/patterns"
	"crewswap/internal/textnorm"
)

// ArtifactName is the default file name of the master table dump.
const ArtifactName = "output_with_alias_position.csv"

// artifactRow holds the fixed leading columns of the artifact. Date columns
// follow and are read through the decoder's unused-column set.
type artifactRow struct {
	Info     string `csv:"Info"`
	Alias    string `csv:"Alias"`
	Position string `csv:"Position"`
}

var fixedColumns = []string{"Info", "Alias", "Position"}

// WriteCSV dumps m as Info,Alias,Position followed by one column per date.
func WriteCSV(w io.Writer, m *MasterTable) error {
	cw := csv.NewWriter(w)

	dates := m.Dates()
	if err := cw.Write(append(append([]string(nil), fixedColumns...), dates...)); err != nil {
		return err
	}

	record := make([]string, len(fixedColumns)+len(dates))
	for _, row := range m.Rows() {
		record[0], record[1], record[2] = row.Info, row.Alias, string(row.Position)
		for j, d := range dates {
			record[len(fixedColumns)+j] = row.Activities[d]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV reloads an artifact written by WriteCSV. Columns that are not ISO
// dates are ignored.
func ReadCSV(r io.Reader) (*MasterTable, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty artifact")
		}
		return nil, err
	}

	header := dec.Header()
	for _, col := range fixedColumns {
		if !contains(header, col) {
			return nil, fmt.Errorf("artifact header missing %q column", col)
		}
	}

	var (
		dates   []time.Time
		dateCol = make(map[int]string)
	)
	for i, col := range header {
		if !patterns.DateColumnPattern.MatchString(col) {
			continue
		}
		d, err := daterange.ParseKey(col)
		if err != nil {
			return nil, fmt.Errorf("artifact column %q: %w", col, err)
		}
		dates = append(dates, d)
		dateCol[i] = col
	}

	doc := Ingested{Name: "artifact", Dates: dates}
	line := 1 // header
	for {
		line++
		var rec artifactRow
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("artifact line %d: %w", line, err)
		}
		if strings.TrimSpace(rec.Info) == "" {
			continue
		}

		row := NewCrewRow(rec.Info)
		if alias := textnorm.Normalize(rec.Alias); alias != "" {
			row.Alias = alias
		}
		if p := Position(rec.Position); p == Commander || p == Copilot || p == Unknown {
			row.Position = p
		}

		raw := dec.Record()
		for _, i := range dec.Unused() {
			key, ok := dateCol[i]
			if !ok || i >= len(raw) || strings.TrimSpace(raw[i]) == "" {
				continue
			}
			row.Activities[key] = raw[i]
		}
		doc.Rows = append(doc.Rows, row)
	}

	var b Builder
	b.Add(doc)
	return b.Build(), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
