// Package patterns provides shared regex patterns and helper functions for roster parsing.
// This file contains the grok-style pattern compiler.

package patterns

import (
	"regexp"
	"strings"
)

// Format is a named cell layout with {PLACEHOLDER} references to base patterns.
type Format struct {
	Name     string
	Pattern  string
	Compiled *regexp.Regexp // populated by Compile
}

// Compiler holds a set of formats sharing one base pattern table.
type Compiler struct {
	base    map[string]string
	formats []Format
}

// NewCompiler creates a compiler for formats. Local patterns override BasePatterns.
func NewCompiler(formats []Format, local map[string]string) *Compiler {
	c := &Compiler{
		base:    make(map[string]string, len(BasePatterns)+len(local)),
		formats: append([]Format(nil), formats...),
	}
	for k, v := range BasePatterns {
		c.base[k] = v
	}
	for k, v := range local {
		c.base[k] = v
	}
	return c
}

// Compile expands placeholders and compiles every format.
func (c *Compiler) Compile() error {
	for i := range c.formats {
		re, err := regexp.Compile(expand(c.formats[i].Pattern, c.base))
		if err != nil {
			return err
		}
		c.formats[i].Compiled = re
	}
	return nil
}

// MustCompile expands BasePatterns placeholders in pattern and compiles it, panicking on error.
func MustCompile(pattern string) *regexp.Regexp {
	return regexp.MustCompile(expand(pattern, BasePatterns))
}

func expand(pattern string, base map[string]string) string {
	for name, re := range base {
		pattern = strings.ReplaceAll(pattern, "{"+name+"}", re)
	}
	return pattern
}

// Match is a successful format match.
type Match struct {
	FormatName string
	Captures   map[string]string
}

// Parse returns the first format matching the upper-cased text, or nil.
func (c *Compiler) Parse(text string) *Match {
	upper := strings.ToUpper(text)
	for _, f := range c.formats {
		if f.Compiled == nil {
			continue
		}
		if m := f.Compiled.FindStringSubmatch(upper); m != nil {
			return &Match{FormatName: f.Name, Captures: captures(f.Compiled, m)}
		}
	}
	return nil
}

// Captures returns the named groups of a submatch produced by re.
func Captures(re *regexp.Regexp, match []string) map[string]string {
	return captures(re, match)
}

func captures(re *regexp.Regexp, match []string) map[string]string {
	out := make(map[string]string)
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" || i >= len(match) {
			continue
		}
		out[name] = match[i]
	}
	return out
}

// GetCapture returns the named capture, or defaultVal when it is absent or empty.
func (m *Match) GetCapture(name, defaultVal string) string {
	if m == nil {
		return defaultVal
	}
	if v, ok := m.Captures[name]; ok && v != "" {
		return v
	}
	return defaultVal
}
