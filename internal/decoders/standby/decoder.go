// Package standby decodes standby (IM, imaginaria) roster cells.
package standby

import (
	"strings"
	"sync"

	"crewswap/internal/activity"
	"crewswap/internal/patterns"
	"crewswap/internal/registry"
)

// Result is a decoded standby duty.
type Result struct {
	Format string `json:"format"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
	Base   string `json:"base,omitempty"`
}

func (r *Result) Type() string { return "standby" }

// Decoder decodes IM cells.
type Decoder struct{}

// Grok compiler singleton.
var (
	grokCompiler *patterns.Compiler
	grokOnce     sync.Once
	grokErr      error
)

func getCompiler() (*patterns.Compiler, error) {
	grokOnce.Do(func() {
		grokCompiler = patterns.NewCompiler(Formats, nil)
		grokErr = grokCompiler.Compile()
	})
	return grokCompiler, grokErr
}

func init() {
	registry.Register(&Decoder{})
}

func (d *Decoder) Name() string    { return "standby" }
func (d *Decoder) Codes() []string { return []string{activity.CodeStandby} }
func (d *Decoder) Priority() int   { return 10 }

func (d *Decoder) QuickCheck(cell string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(cell)), activity.CodeStandby)
}

func (d *Decoder) Decode(cell string) registry.Result {
	compiler, err := getCompiler()
	if err != nil {
		return nil
	}

	match := compiler.Parse(cell)
	if match == nil {
		return nil
	}

	result := &Result{
		Format: match.FormatName,
		Base:   match.GetCapture("base", ""),
	}
	if start := match.GetCapture("start", ""); start != "" {
		result.Start = patterns.Clock(start)
		result.End = patterns.Clock(match.GetCapture("end", ""))
	}
	return result
}

// Summary renders the result on one line, e.g. "IM 06:00-14:00 MAD".
func (r *Result) Summary() string {
	parts := []string{activity.CodeStandby}
	if r.Start != "" {
		parts = append(parts, r.Start+"-"+r.End)
	}
	if r.Base != "" {
		parts = append(parts, r.Base)
	}
	return strings.Join(parts, " ")
}
