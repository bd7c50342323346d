// Package daterange recovers the calendar range a roster document covers from
// its header text.
package daterange

import (
	"time"

	"crewswap/internal/patterns"
	"crewswap/internal/textnorm"
)

// HeaderMarker appears on roster pages that carry the schedule header.
const HeaderMarker = "LISTADO CUADRANTE DE LA PROGRAMACIÓN"

// Layouts used for header dates and activity-date column keys.
const (
	HeaderLayout = "02/01/2006"
	KeyLayout    = "2006-01-02"
)

// maxDays bounds a single range; a roster covers a month, so anything longer is a misread.
const maxDays = 366

// HasHeader reports whether page text carries the schedule header marker.
// Accents and case are ignored, extraction tools often lose them.
func HasHeader(text string) bool {
	return textnorm.Contains(text, HeaderMarker)
}

// Extract returns every day from the first "DD/MM/YYYY-DD/MM/YYYY" range in text,
// inclusive, at UTC midnight. It returns false when no valid range is present.
func Extract(text string) ([]time.Time, bool) {
	m := patterns.DateRangePattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	c := patterns.Captures(patterns.DateRangePattern, m)

	from, err := time.Parse(HeaderLayout, c["from"])
	if err != nil {
		return nil, false
	}
	to, err := time.Parse(HeaderLayout, c["to"])
	if err != nil {
		return nil, false
	}
	return Days(from, to)
}

// Days lists every day from from to to inclusive. A reversed or oversized range yields false.
func Days(from, to time.Time) ([]time.Time, bool) {
	from = truncate(from)
	to = truncate(to)
	if to.Before(from) {
		return nil, false
	}

	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
		if len(days) > maxDays {
			return nil, false
		}
	}
	return days, true
}

// Key formats a date as an activity column key.
func Key(d time.Time) string {
	return d.Format(KeyLayout)
}

// Keys formats every date as an activity column key.
func Keys(dates []time.Time) []string {
	keys := make([]string, len(dates))
	for i, d := range dates {
		keys[i] = Key(d)
	}
	return keys
}

// ParseKey parses an activity column key.
func ParseKey(key string) (time.Time, error) {
	return time.Parse(KeyLayout, key)
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
