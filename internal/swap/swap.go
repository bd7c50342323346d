// Package swap searches a master table for colleagues able to take over a duty.
package swap

import (
	"fmt"
	"strings"
	"sync"

	"crewswap/internal/activity"
	_ "crewswap/internal/decoders" // register all activity decoders via init()
	"crewswap/internal/decoders/flight"
	"crewswap/internal/registry"
	"crewswap/internal/roster"
)

// Duty is the kind of duty being swapped.
type Duty int

const (
	Flight  Duty = iota // CO
	Standby             // IM
)

// Marker returns the cell code identifying the duty.
func (d Duty) Marker() string {
	if d == Standby {
		return activity.CodeStandby
	}
	return activity.CodeFlight
}

func (d Duty) String() string {
	if d == Standby {
		return "standby"
	}
	return "flight"
}

// ParseDuty accepts "flight"/"co" and "standby"/"im", case-insensitively.
func ParseDuty(s string) (Duty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flight", "co", "":
		return Flight, nil
	case "standby", "im", "imaginaria":
		return Standby, nil
	}
	return Flight, fmt.Errorf("unknown duty %q", s)
}

// Group is the availability class a candidate falls in on the give date.
type Group string

const (
	GroupDayOff Group = activity.CodeDayOff
	GroupLeave  Group = activity.CodeLeave
)

// Request describes what the requester wants to give away and when they can take over.
type Request struct {
	Alias      string
	Position   roster.Position
	InTraining bool
	GiveDate   string
	TakeDates  []string
	Duty       Duty
}

// RequestFor builds a request on behalf of a resolved row.
func RequestFor(row roster.CrewRow, duty Duty, give string, take []string) Request {
	return Request{
		Alias:      row.Alias,
		Position:   row.Position,
		InTraining: row.InTraining,
		GiveDate:   give,
		TakeDates:  take,
		Duty:       duty,
	}
}

// Candidate is one colleague able to swap on one take date.
type Candidate struct {
	Alias    string             `json:"alias"`
	Position roster.Position    `json:"position"`
	Group    Group              `json:"group"`
	FreeOn   string             `json:"free_on"`
	Date     string             `json:"date"`
	Activity string             `json:"activity"`
	Segments []activity.Segment `json:"segments,omitempty"`
	Display  string             `json:"display"`
	Kind     string             `json:"kind,omitempty"`    // decoder result type of the cell
	Summary  string             `json:"summary,omitempty"` // one-line decoded form, when the decoder offers one
}

// Outcome classifies a search result.
type Outcome int

const (
	Skipped      Outcome = iota // give date or take dates missing
	NoneEligible                // no row passed the eligibility filter
	NoDuties                    // eligible rows, none with the duty on a take date
	Found
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case NoneEligible:
		return "none_eligible"
	case NoDuties:
		return "no_duties"
	default:
		return "found"
	}
}

// Result groups candidates by availability marker on the give date.
type Result struct {
	Searched bool        `json:"searched"`
	Eligible int         `json:"eligible"`
	SA       []Candidate `json:"sa"`
	LI       []Candidate `json:"li"`
}

// Outcome reports which no-candidate case applies, if any.
func (r Result) Outcome() Outcome {
	switch {
	case !r.Searched:
		return Skipped
	case r.Eligible == 0:
		return NoneEligible
	case len(r.SA) == 0 && len(r.LI) == 0:
		return NoDuties
	default:
		return Found
	}
}

// All returns SA candidates followed by LI candidates.
func (r Result) All() []Candidate {
	out := make([]Candidate, 0, len(r.SA)+len(r.LI))
	out = append(out, r.SA...)
	return append(out, r.LI...)
}

// Find runs the swap search. A row free on the give date with both markers is
// listed in both groups. Each row keeps only the take dates where its cell
// carries the duty marker.
func Find(m *roster.MasterTable, req Request) Result {
	takes := dedupe(req.TakeDates)
	if strings.TrimSpace(req.GiveDate) == "" || len(takes) == 0 {
		return Result{}
	}

	res := Result{Searched: true}
	eligible := All(
		NotAlias(req.Alias),
		SamePosition(req.Position),
		SameTraining(req.InTraining),
		FreeOn(req.GiveDate),
	)

	for _, row := range m.Rows() {
		if !eligible(row) {
			continue
		}
		res.Eligible++

		give := row.Activity(req.GiveDate)
		if activity.Has(give, activity.CodeDayOff) {
			res.SA = append(res.SA, candidates(row, GroupDayOff, req, takes)...)
		}
		if activity.Has(give, activity.CodeLeave) {
			res.LI = append(res.LI, candidates(row, GroupLeave, req, takes)...)
		}
	}
	return res
}

func candidates(row roster.CrewRow, group Group, req Request, takes []string) []Candidate {
	var out []Candidate
	for _, date := range takes {
		cell := row.Activity(date)
		if !activity.Has(cell, req.Duty.Marker()) {
			continue
		}
		c := Candidate{
			Alias:    row.Alias,
			Position: row.Position,
			Group:    group,
			FreeOn:   req.GiveDate,
			Date:     date,
			Activity: cell,
		}
		describe(&c)
		out = append(out, c)
	}
	return out
}

// summarizer is implemented by decoder results that render on one line.
type summarizer interface {
	Summary() string
}

var sortDecoders sync.Once

// describe decodes the candidate's cell through the default registry.
// Cells no flight decoder accepts fall back to the plain itinerary format.
func describe(c *Candidate) {
	reg := registry.Default()
	sortDecoders.Do(reg.Sort)

	res := reg.DispatchFirst(c.Activity)
	if res != nil {
		c.Kind = res.Type()
		if s, ok := res.(summarizer); ok {
			c.Summary = s.Summary()
		}
	}

	if fr, ok := res.(*flight.Result); ok {
		c.Segments = fr.Segments
		c.Display = fr.Display
		return
	}
	c.Display = activity.FormatFlightInfo(c.Activity)
}

// GiveOptions lists the dates on which row carries the duty, in dates order.
func GiveOptions(row roster.CrewRow, dates []string, duty Duty) []string {
	var out []string
	for _, d := range dates {
		if activity.Has(row.Activity(d), duty.Marker()) {
			out = append(out, d)
		}
	}
	return out
}

func dedupe(dates []string) []string {
	seen := make(map[string]bool, len(dates))
	var out []string
	for _, d := range dates {
		d = strings.TrimSpace(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
