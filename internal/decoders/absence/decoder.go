// Package absence decodes day-off (SA) and leave (LI) roster cells.
package absence

import (
	"strings"

	"crewswap/internal/activity"
	"crewswap/internal/registry"
)

// Kinds reported in Result.Kind.
const (
	KindDayOff = "day_off"
	KindLeave  = "leave"
)

// Result is a decoded absence. Free is always true: the crew member has no duty.
type Result struct {
	Kind string `json:"kind"`
	Code string `json:"code"`
	Note string `json:"note,omitempty"`
	Free bool   `json:"free"`
}

func (r *Result) Type() string { return r.Kind }

// Decoder decodes SA and LI cells.
type Decoder struct{}

func init() {
	registry.Register(&Decoder{})
}

func (d *Decoder) Name() string    { return "absence" }
func (d *Decoder) Codes() []string { return []string{activity.CodeDayOff, activity.CodeLeave} }
func (d *Decoder) Priority() int   { return 10 }

func (d *Decoder) QuickCheck(cell string) bool {
	code := registry.LeadingCode(cell)
	return code == activity.CodeDayOff || code == activity.CodeLeave
}

func (d *Decoder) Decode(cell string) registry.Result {
	code := registry.LeadingCode(cell)

	result := &Result{Code: code, Free: true}
	switch code {
	case activity.CodeDayOff:
		result.Kind = KindDayOff
	case activity.CodeLeave:
		result.Kind = KindLeave
	default:
		return nil
	}

	// Anything after the code is kept as a free-text note, e.g. "LI VACACIONES".
	rest := strings.TrimSpace(strings.TrimSpace(cell)[len(code):])
	if rest != "" {
		result.Note = rest
	}
	return result
}
