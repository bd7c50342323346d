// Package registry provides a cell decoder registry for dispatching
// roster cells to the decoders that understand their duty code.
package registry

import (
	"sort"
	"strings"
	"sync"
)

// Result is the common interface for all decode results.
type Result interface {
	Type() string // e.g. "flight", "standby", "day_off"
}

// Decoder is implemented by each cell decoder.
type Decoder interface {
	// Name returns the decoder's unique identifier.
	Name() string

	// Codes returns the leading duty codes this decoder handles.
	// Empty slice means "any cell" (content-based decoder).
	Codes() []string

	// QuickCheck performs a fast string check before any regex work.
	// Returns false when the cell definitely cannot be decoded.
	QuickCheck(cell string) bool

	// Priority orders decoders sharing a code. Lower runs first.
	Priority() int

	// Decode returns nil when the cell is not applicable.
	Decode(cell string) Result
}

// Registry holds registered decoders organised for dispatch.
type Registry struct {
	mu sync.RWMutex

	// byCode maps a leading duty code to its decoders, sorted by Priority.
	byCode map[string][]Decoder

	// global holds decoders that look at every cell.
	global []Decoder

	// catchAll holds decoders that run only when nothing else matched.
	catchAll []Decoder

	sorted bool
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		byCode: make(map[string][]Decoder),
	}
}

var defaultRegistry = New()

// Default returns the global registry. Decoder packages register into it from init().
func Default() *Registry {
	return defaultRegistry
}

// Register adds a decoder to the default registry.
func Register(d Decoder) {
	defaultRegistry.Register(d)
}

// RegisterCatchAll adds a catch-all decoder to the default registry.
func RegisterCatchAll(d Decoder) {
	defaultRegistry.RegisterCatchAll(d)
}

// Register adds a decoder to the registry.
func (r *Registry) Register(d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	codes := d.Codes()
	if len(codes) == 0 {
		r.global = append(r.global, d)
	} else {
		for _, code := range codes {
			code = strings.ToUpper(code)
			r.byCode[code] = append(r.byCode[code], d)
		}
	}
	r.sorted = false
}

// RegisterCatchAll adds a catch-all decoder.
func (r *Registry) RegisterCatchAll(d Decoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catchAll = append(r.catchAll, d)
	r.sorted = false
}

// Sort orders every decoder slice by priority. Call once after registration.
func (r *Registry) Sort() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sorted {
		return
	}

	byPriority := func(ds []Decoder) {
		sort.SliceStable(ds, func(i, j int) bool {
			return ds[i].Priority() < ds[j].Priority()
		})
	}
	for code := range r.byCode {
		byPriority(r.byCode[code])
	}
	byPriority(r.global)
	byPriority(r.catchAll)

	r.sorted = true
}

// LeadingCode returns the duty code a cell starts with: its first two letters,
// upper-cased. Cells starting with anything else return "".
func LeadingCode(cell string) string {
	cell = strings.ToUpper(strings.TrimSpace(cell))
	if len(cell) < 2 {
		return ""
	}
	code := cell[:2]
	for i := 0; i < 2; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return ""
		}
	}
	return code
}

// Dispatch runs the decoders for the cell's leading code, then the global
// decoders, and the catch-alls only when nothing produced a result.
func (r *Registry) Dispatch(cell string) []Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []Result
	run := func(ds []Decoder) {
		for _, d := range ds {
			if !d.QuickCheck(cell) {
				continue
			}
			if result := d.Decode(cell); result != nil {
				results = append(results, result)
			}
		}
	}

	if code := LeadingCode(cell); code != "" {
		run(r.byCode[code])
	}
	run(r.global)

	if len(results) == 0 {
		for _, d := range r.catchAll {
			if result := d.Decode(cell); result != nil {
				results = append(results, result)
			}
		}
	}

	return results
}

// DispatchFirst returns only the first successful decode result.
func (r *Registry) DispatchFirst(cell string) Result {
	results := r.Dispatch(cell)
	if len(results) == 0 {
		return nil
	}
	return results[0]
}

// RegisteredCodes returns every code that has decoders, sorted.
func (r *Registry) RegisteredCodes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := make([]string, 0, len(r.byCode))
	for code := range r.byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Decoders returns all registered decoders once each, in registration groups:
// global, code-specific, catch-all.
func (r *Registry) Decoders() []Decoder {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var out []Decoder
	add := func(d Decoder) {
		if !seen[d.Name()] {
			seen[d.Name()] = true
			out = append(out, d)
		}
	}

	for _, d := range r.global {
		add(d)
	}
	for _, code := range sortedKeys(r.byCode) {
		for _, d := range r.byCode[code] {
			add(d)
		}
	}
	for _, d := range r.catchAll {
		add(d)
	}
	return out
}

func sortedKeys(m map[string][]Decoder) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
