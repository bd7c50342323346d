// Package patterns provides shared regex patterns and helper functions for roster parsing.
package patterns

import (
	"strings"
)

// Core patterns used across the cell decoders and the roster assembler.
var (
	// SegmentPattern matches one itinerary group: origin, departure, arrival, destination.
	// e.g. "MAD 0800 1000 BCN"
	SegmentPattern = MustCompile(`(?P<origin>{IATA})\s+(?P<dep>{TIME4})\s+(?P<arr>{TIME4})\s+(?P<dest>{IATA})`)

	// FlightNumberPattern matches a single letter followed by five digits, e.g. "L00745".
	FlightNumberPattern = MustCompile(`\b{FLIGHTNO}\b`)

	// DateRangePattern matches the roster header range, e.g. "01/03/2025-31/03/2025".
	DateRangePattern = MustCompile(`(?P<from>{DATE_DMY})\s*-\s*(?P<to>{DATE_DMY})`)

	// DateColumnPattern matches ISO activity-date column keys, e.g. "2025-03-01".
	DateColumnPattern = MustCompile(`^{DATE_ISO}$`)

	// AirportTokenPattern matches a bare 3-letter airport token.
	AirportTokenPattern = MustCompile(`^{IATA}$`)

	// TimeTokenPattern matches a bare 4-digit HHMM token.
	TimeTokenPattern = MustCompile(`^{TIME4}$`)
)

// separatorReplacer turns separator marks into spaces before tokenising.
var separatorReplacer = strings.NewReplacer(
	"\r\n", " ", "\n", " ", "\t", " ",
	"-", " ", "/", " ", ",", " ", ";", " ", "|", " ", "(", " ", ")", " ",
)

// Tokenize splits a cell into upper-cased tokens, treating separator marks as whitespace.
func Tokenize(text string) []string {
	text = separatorReplacer.Replace(text)

	fields := strings.Fields(text)
	tokens := make([]string, len(fields))
	for i, f := range fields {
		tokens[i] = strings.ToUpper(f)
	}
	return tokens
}

// Clock renders an HHMM token as HH:MM. Anything else is returned unchanged.
func Clock(hhmm string) string {
	if len(hhmm) != 4 {
		return hhmm
	}
	return hhmm[:2] + ":" + hhmm[2:]
}
