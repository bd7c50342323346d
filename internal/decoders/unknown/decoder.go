// Package unknown is the catch-all decoder for cells no other decoder understood.
package unknown

import (
	"strings"

	"crewswap/internal/registry"
)

// Result keeps the first token of the cell as its code.
type Result struct {
	Code string `json:"code,omitempty"`
	Raw  string `json:"raw"`
}

func (r *Result) Type() string { return "unknown" }

// Decoder always produces a result for non-blank cells.
type Decoder struct{}

func init() {
	registry.RegisterCatchAll(&Decoder{})
}

func (d *Decoder) Name() string                { return "unknown" }
func (d *Decoder) Codes() []string             { return nil }
func (d *Decoder) Priority() int               { return 1000 }
func (d *Decoder) QuickCheck(cell string) bool { return strings.TrimSpace(cell) != "" }

func (d *Decoder) Decode(cell string) registry.Result {
	fields := strings.Fields(cell)
	if len(fields) == 0 {
		return nil
	}
	return &Result{Code: strings.ToUpper(fields[0]), Raw: cell}
}
