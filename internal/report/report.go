// Package report renders identity and swap results for people.
package report

import (
	"fmt"
	"io"
	"strings"

	"crewswap/internal/identity"
	"crewswap/internal/swap"
)

// Sink receives results as the core produces them.
type Sink interface {
	Identity(m identity.Match)
	NoIdentity(query string, threshold float64)
	Candidates(duty swap.Duty, res swap.Result)
	Warning(msg string)
}

// Text writes plain-text reports to W.
type Text struct {
	W io.Writer
}

var _ Sink = (*Text)(nil)

// NewText returns a text sink writing to w.
func NewText(w io.Writer) *Text {
	return &Text{W: w}
}

func (t *Text) printf(format string, args ...any) {
	fmt.Fprintf(t.W, format, args...)
}

func (t *Text) Identity(m identity.Match) {
	t.printf("Match found: %q (similarity %.0f%%)\n", m.Row.Alias, m.Score)
	t.printf("  position: %s, in training: %v\n", m.Row.Position, m.Row.InTraining)
}

func (t *Text) NoIdentity(query string, threshold float64) {
	t.printf("No alias is similar enough to %q (threshold %.0f%%).\n", query, threshold)
}

func (t *Text) Warning(msg string) {
	t.printf("warning: %s\n", msg)
}

func (t *Text) Candidates(duty swap.Duty, res swap.Result) {
	switch res.Outcome() {
	case swap.Skipped:
		t.printf("Search not run: a give date and at least one take date are required.\n")
		return
	case swap.NoneEligible:
		t.printf("No colleague with SA or LI on the give date shares your position and training status.\n")
		return
	case swap.NoDuties:
		t.printf("No colleagues have %s duties (%s) on the selected dates.\n", duty, duty.Marker())
		return
	}

	t.group(duty, "day off (SA)", res.SA)
	t.group(duty, "leave (LI)", res.LI)
}

func (t *Text) group(duty swap.Duty, label string, cands []swap.Candidate) {
	t.printf("Colleagues on %s:\n", label)
	if len(cands) == 0 {
		t.printf("  none\n")
		return
	}

	for i, c := range cands {
		if i == 0 || cands[i-1].Alias != c.Alias {
			t.printf("  %s (%s), free on %s\n", c.Alias, c.Position, c.FreeOn)
		}
		detail := strings.TrimSpace(c.Activity)
		if duty == swap.Flight {
			detail = c.Display
		}
		t.printf("    - %s: %s\n", c.Date, detail)
	}
}
