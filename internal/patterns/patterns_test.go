package patterns

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"CO MAD 0800 1000 BCN", []string{"CO", "MAD", "0800", "1000", "BCN"}},
		{"co mad-bcn", []string{"CO", "MAD", "BCN"}},
		{"LI\nMAD\t0800", []string{"LI", "MAD", "0800"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestClock(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0800", "08:00"},
		{"2359", "23:59"},
		{"9999", "99:99"},
		{"800", "800"},
	}

	for _, tt := range tests {
		if got := Clock(tt.input); got != tt.want {
			t.Errorf("Clock(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSegmentPattern(t *testing.T) {
	text := "CO MAD 0800 1000 BCN L00745 BCN 1100 1230 PMI L00746"
	matches := SegmentPattern.FindAllStringSubmatch(text, -1)
	if len(matches) != 2 {
		t.Fatalf("got %d segments, want 2", len(matches))
	}

	first := Captures(SegmentPattern, matches[0])
	if first["origin"] != "MAD" || first["dep"] != "0800" || first["arr"] != "1000" || first["dest"] != "BCN" {
		t.Errorf("first segment = %v", first)
	}
	second := Captures(SegmentPattern, matches[1])
	if second["origin"] != "BCN" || second["dest"] != "PMI" {
		t.Errorf("second segment = %v", second)
	}
}

func TestFlightNumberPattern(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"CO MAD 0800 1000 BCN L00745", []string{"L00745"}},
		{"L00745 X12345", []string{"L00745", "X12345"}},
		{"L0074 LL00745", nil},
	}

	for _, tt := range tests {
		got := FlightNumberPattern.FindAllString(tt.input, -1)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("FlightNumberPattern in %q = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDateRangePattern(t *testing.T) {
	tests := []struct {
		input    string
		from, to string
	}{
		{"Periodo: 01/03/2025-31/03/2025", "01/03/2025", "31/03/2025"},
		{"01/03/2025 - 31/03/2025", "01/03/2025", "31/03/2025"},
	}

	for _, tt := range tests {
		m := DateRangePattern.FindStringSubmatch(tt.input)
		if m == nil {
			t.Fatalf("no match in %q", tt.input)
		}
		c := Captures(DateRangePattern, m)
		if c["from"] != tt.from || c["to"] != tt.to {
			t.Errorf("range in %q = %s..%s, want %s..%s", tt.input, c["from"], c["to"], tt.from, tt.to)
		}
	}
}

func TestCompiler(t *testing.T) {
	c := NewCompiler([]Format{
		{Name: "window", Pattern: `^IM\s+(?P<start>{TIME4})\s+(?P<end>{TIME4})`},
		{Name: "bare", Pattern: `^(?P<code>{DUTY})\b`},
	}, nil)
	if err := c.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	m := c.Parse("im 0600 1400")
	if m == nil || m.FormatName != "window" {
		t.Fatalf("Parse window = %+v", m)
	}
	if got := m.GetCapture("start", ""); got != "0600" {
		t.Errorf("start = %q, want %q", got, "0600")
	}
	if got := m.GetCapture("base", "MAD"); got != "MAD" {
		t.Errorf("missing capture default = %q, want %q", got, "MAD")
	}

	m = c.Parse("IM")
	if m == nil || m.FormatName != "bare" {
		t.Errorf("Parse bare = %+v", m)
	}
	if c.Parse("XYZ") != nil {
		t.Error("expected no match for XYZ")
	}

	var nilMatch *Match
	if got := nilMatch.GetCapture("x", "def"); got != "def" {
		t.Errorf("nil GetCapture = %q", got)
	}
}

func TestCompilerLocalOverride(t *testing.T) {
	c := NewCompiler([]Format{{Name: "apt", Pattern: `^(?P<apt>{IATA})$`}}, map[string]string{"IATA": `[A-Z]{4}`})
	if err := c.Compile(); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if c.Parse("LEMD") == nil {
		t.Error("local override not applied")
	}
	if c.Parse("MAD") != nil {
		t.Error("global IATA should be overridden")
	}
}
