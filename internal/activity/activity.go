// Package activity decodes single roster cells: duty codes, flight itineraries
// and the short display form used in candidate listings.
package activity

import (
	"strings"

	"crewswap/internal/patterns"
)

// Duty and availability codes as printed in roster cells.
const (
	CodeFlight  = "CO" // flight duty, cell carries an itinerary
	CodeDayOff  = "SA" // day off / stand-down
	CodeLeave   = "LI" // leave
	CodeStandby = "IM" // standby (imaginaria)
)

// Codes lists every known code in display order.
var Codes = []string{CodeFlight, CodeDayOff, CodeLeave, CodeStandby}

// UnknownFlight is used for segments with no paired flight number.
const UnknownFlight = "UNKNOWN"

// NoItinerary is returned by FormatFlightInfo when a cell has no airports.
const NoItinerary = "No valid itinerary"

// Segment is one leg of a flight-duty itinerary.
type Segment struct {
	Leg         int    `json:"leg"`
	Origin      string `json:"origin"`
	Departure   string `json:"departure"`
	Destination string `json:"destination"`
	Arrival     string `json:"arrival"`
	Flight      string `json:"flight"`
}

// Has reports whether the upper-cased cell contains code as a substring.
func Has(cell, code string) bool {
	if code == "" {
		return false
	}
	return strings.Contains(strings.ToUpper(cell), code)
}

// IsFlight reports whether the trimmed cell starts with the flight duty code.
func IsFlight(cell string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(cell)), CodeFlight)
}

// Parse extracts the itinerary of a flight-duty cell. Any other cell yields nil.
// Airport-time groups and flight numbers are scanned independently and paired by
// position; legs without a flight number get UnknownFlight.
func Parse(cell string) []Segment {
	if !IsFlight(cell) {
		return nil
	}
	text := strings.ToUpper(cell)

	groups := patterns.SegmentPattern.FindAllStringSubmatch(text, -1)
	if len(groups) == 0 {
		return nil
	}
	flights := patterns.FlightNumberPattern.FindAllString(text, -1)

	segments := make([]Segment, 0, len(groups))
	for i, g := range groups {
		c := patterns.Captures(patterns.SegmentPattern, g)
		seg := Segment{
			Leg:         i + 1,
			Origin:      c["origin"],
			Departure:   patterns.Clock(c["dep"]),
			Destination: c["dest"],
			Arrival:     patterns.Clock(c["arr"]),
			Flight:      UnknownFlight,
		}
		if i < len(flights) {
			seg.Flight = flights[i]
		}
		segments = append(segments, seg)
	}
	return segments
}

// FormatFlightInfo renders a cell as "A - B - C (HH:MM - HH:MM)" using the full
// airport sequence and the first and last time tokens. Flight numbers are ignored.
func FormatFlightInfo(cell string) string {
	var airports, times []string
	for _, tok := range patterns.Tokenize(cell) {
		switch {
		case patterns.AirportTokenPattern.MatchString(tok):
			airports = append(airports, tok)
		case patterns.TimeTokenPattern.MatchString(tok):
			times = append(times, tok)
		}
	}

	if len(airports) == 0 {
		return NoItinerary
	}
	route := strings.Join(airports, " - ")
	if len(times) == 0 {
		return route
	}
	return route + " (" + patterns.Clock(times[0]) + " - " + patterns.Clock(times[len(times)-1]) + ")"
}

// Summary is the typed view of one cell.
type Summary struct {
	Raw      string    `json:"raw"`
	Codes    []string  `json:"codes,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
	Route    []string  `json:"route,omitempty"`
	Display  string    `json:"display"`
}

// Summarize decodes every aspect of a cell at once.
func Summarize(cell string) Summary {
	s := Summary{
		Raw:      cell,
		Segments: Parse(cell),
		Display:  FormatFlightInfo(cell),
	}
	for _, code := range Codes {
		if Has(cell, code) {
			s.Codes = append(s.Codes, code)
		}
	}
	s.Route = Route(s.Segments)
	return s
}

// Route returns the airport sequence origin -> ... -> destination of segments.
// Consecutive duplicates at leg joins are collapsed.
func Route(segments []Segment) []string {
	if len(segments) == 0 {
		return nil
	}
	route := []string{segments[0].Origin}
	for _, seg := range segments {
		if route[len(route)-1] != seg.Origin {
			route = append(route, seg.Origin)
		}
		route = append(route, seg.Destination)
	}
	return route
}
