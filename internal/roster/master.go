package roster

import (
	"errors"
	"sort"
	"strings"
	"time"

	"crewswap/internal/daterange"
	"crewswap/internal/logger"
	"crewswap/internal/patterns"
)

// MasterTable is the consolidated, one-row-per-alias schedule. It is not
// modified after Build.
type MasterTable struct {
	rows  []CrewRow
	index map[string]int
	dates []string // sorted ISO keys
}

// Rows returns the crew rows in first-seen order.
func (m *MasterTable) Rows() []CrewRow {
	if m == nil {
		return nil
	}
	return m.rows
}

// Len returns the number of crew rows.
func (m *MasterTable) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rows)
}

// Empty reports whether the table has no rows.
func (m *MasterTable) Empty() bool {
	return m.Len() == 0
}

// Dates returns every known activity date key, sorted.
func (m *MasterTable) Dates() []string {
	if m == nil {
		return nil
	}
	return m.dates
}

// Lookup finds the row for alias. The alias is normalised first.
func (m *MasterTable) Lookup(alias string) (CrewRow, bool) {
	if m == nil {
		return CrewRow{}, false
	}
	i, ok := m.index[AliasOf(alias)]
	if !ok {
		return CrewRow{}, false
	}
	return m.rows[i], true
}

// Aliases returns every alias in row order.
func (m *MasterTable) Aliases() []string {
	out := make([]string, 0, m.Len())
	for _, r := range m.Rows() {
		out = append(out, r.Alias)
	}
	return out
}

// DateFilter selects activity-date columns.
type DateFilter struct {
	YearPrefix string    // leading year the key must start with; empty means any
	After      time.Time // zero means no lower bound; otherwise keys strictly after this day
}

// DateColumns returns the date keys matching f, sorted.
func (m *MasterTable) DateColumns(f DateFilter) []string {
	var after string
	if !f.After.IsZero() {
		after = daterange.Key(f.After)
	}

	var out []string
	for _, key := range m.Dates() {
		if !patterns.DateColumnPattern.MatchString(key) {
			continue
		}
		if f.YearPrefix != "" && !strings.HasPrefix(key, f.YearPrefix) {
			continue
		}
		// ISO keys order lexically.
		if after != "" && key <= after {
			continue
		}
		out = append(out, key)
	}
	return out
}

// Builder consolidates ingested documents in upload order.
type Builder struct {
	docs []Ingested
}

// Add appends one fully ingested document.
func (b *Builder) Add(doc Ingested) {
	b.docs = append(b.docs, doc)
}

// Build groups rows by alias. For each alias the first non-empty info and the
// first non-empty cell per date win; later documents never overwrite.
func (b *Builder) Build() *MasterTable {
	m := &MasterTable{index: make(map[string]int)}
	seenDates := make(map[string]bool)

	for _, doc := range b.docs {
		for _, key := range daterange.Keys(doc.Dates) {
			if !seenDates[key] {
				seenDates[key] = true
				m.dates = append(m.dates, key)
			}
		}

		for _, row := range doc.Rows {
			if row.Alias == "" {
				continue
			}
			i, ok := m.index[row.Alias]
			if !ok {
				merged := CrewRow{
					Info:       row.Info,
					Alias:      row.Alias,
					Position:   row.Position,
					InTraining: row.InTraining,
					Activities: make(map[string]string),
				}
				if merged.Position == "" {
					merged.Position = PositionOf(row.Info)
				}
				i = len(m.rows)
				m.index[row.Alias] = i
				m.rows = append(m.rows, merged)
			}
			mergeInto(&m.rows[i], row)
		}
	}

	sort.Strings(m.dates)
	return m
}

func mergeInto(dst *CrewRow, src CrewRow) {
	if strings.TrimSpace(dst.Info) == "" && strings.TrimSpace(src.Info) != "" {
		alias := dst.Alias
		*dst = CrewRow{
			Info:       src.Info,
			Alias:      alias,
			Position:   PositionOf(src.Info),
			InTraining: InTraining(src.Info),
			Activities: dst.Activities,
		}
	}
	for date, cell := range src.Activities {
		if _, taken := dst.Activities[date]; taken || strings.TrimSpace(cell) == "" {
			continue
		}
		dst.Activities[date] = cell
	}
}

// NamedDocument pairs a document with the name used in warnings.
type NamedDocument struct {
	Name     string
	Document Document
}

// Warning reports a document that contributed nothing.
type Warning struct {
	Document string `json:"document"`
	Message  string `json:"message"`
	Err      error  `json:"-"`
}

func (w Warning) String() string {
	return w.Document + ": " + w.Message
}

// BuildMaster ingests docs in order and consolidates the ones that succeed.
// Every failing document is reported as a warning and skipped whole.
func BuildMaster(docs []NamedDocument) (*MasterTable, []Warning) {
	var (
		b        Builder
		warnings []Warning
	)
	for _, nd := range docs {
		ing, err := IngestDocument(nd.Name, nd.Document)
		if err != nil {
			logger.Warn("skipping document", "document", nd.Name, "error", err)
			warnings = append(warnings, Warning{Document: nd.Name, Message: describe(err), Err: err})
			continue
		}
		logger.Debug("ingested document", "document", nd.Name, "rows", len(ing.Rows), "dates", len(ing.Dates))
		b.Add(ing)
	}
	return b.Build(), warnings
}

func describe(err error) string {
	switch {
	case errors.Is(err, ErrUnreadable):
		return "the document could not be read"
	case errors.Is(err, ErrNoTables):
		return "no roster tables were found"
	case errors.Is(err, ErrNoDateRange):
		return "no date range header was found"
	default:
		return err.Error()
	}
}
