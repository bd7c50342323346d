// Package patterns provides shared regex patterns and helper functions for roster parsing.
// This file contains grok-style base patterns for use with the Compiler.

package patterns

// BasePatterns defines reusable regex components for grok-style pattern composition.
// These are referenced in format patterns using {PATTERN_NAME} syntax.
var BasePatterns = map[string]string{
	// Airport codes as printed on the roster (IATA).
	"IATA": `[A-Z]{3}`,

	// Flight numbers: one letter + five digits, e.g. L00745.
	"FLIGHTNO": `[A-Z]\d{5}`,

	// Clock times.
	"TIME4": `\d{4}`, // HHMM

	// Dates.
	"DATE_DMY": `\d{2}/\d{2}/\d{4}`, // 31/03/2025
	"DATE_ISO": `\d{4}-\d{2}-\d{2}`, // 2025-03-31

	// Duty codes.
	"DUTY": `(?:CO|SA|LI|IM)`,
}
