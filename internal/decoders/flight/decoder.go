// Package flight decodes flight-duty (CO) roster cells.
package flight

import (
	"strings"

	"crewswap/internal/activity"
	"crewswap/internal/registry"
)

// Result is a decoded flight duty.
type Result struct {
	Segments       []activity.Segment `json:"segments"`
	Route          []string           `json:"route"`
	FirstDeparture string             `json:"first_departure"`
	LastArrival    string             `json:"last_arrival"`
	Flights        []string           `json:"flights,omitempty"`
	Display        string             `json:"display"`
}

func (r *Result) Type() string { return "flight" }

// Decoder decodes CO cells.
type Decoder struct{}

func init() {
	registry.Register(&Decoder{})
}

func (d *Decoder) Name() string    { return "flight" }
func (d *Decoder) Codes() []string { return []string{activity.CodeFlight} }
func (d *Decoder) Priority() int   { return 10 }

func (d *Decoder) QuickCheck(cell string) bool {
	return activity.IsFlight(cell)
}

func (d *Decoder) Decode(cell string) registry.Result {
	segments := activity.Parse(cell)
	if len(segments) == 0 {
		return nil
	}

	result := &Result{
		Segments:       segments,
		Route:          activity.Route(segments),
		FirstDeparture: segments[0].Departure,
		LastArrival:    segments[len(segments)-1].Arrival,
		Display:        activity.FormatFlightInfo(cell),
	}
	for _, seg := range segments {
		if seg.Flight != activity.UnknownFlight {
			result.Flights = append(result.Flights, seg.Flight)
		}
	}
	return result
}

// Summary renders the result on one line, e.g. "MAD-BCN-MAD 08:00-13:00 L00745,L00746".
func (r *Result) Summary() string {
	var b strings.Builder
	b.WriteString(strings.Join(r.Route, "-"))
	b.WriteString(" ")
	b.WriteString(r.FirstDeparture + "-" + r.LastArrival)
	if len(r.Flights) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(r.Flights, ","))
	}
	return b.String()
}
