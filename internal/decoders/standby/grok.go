// Package standby provides grok-style pattern definitions for standby cells.
package standby

import "crewswap/internal/patterns"

// Formats defines the known standby cell layouts, most specific first.
var Formats = []patterns.Format{
	// Window with base airport.
	// Example: IM 0600 1400 MAD
	{
		Name:    "window_base",
		Pattern: `^\s*IM\w*\s+(?P<start>{TIME4})\s+(?P<end>{TIME4})\s+(?P<base>{IATA})\b`,
	},
	// Window only.
	// Example: IM 0600 1400
	{
		Name:    "window",
		Pattern: `^\s*IM\w*\s+(?P<start>{TIME4})\s+(?P<end>{TIME4})`,
	},
	// Base only.
	// Example: IMAG MAD
	{
		Name:    "base",
		Pattern: `^\s*IM\w*\s+(?P<base>{IATA})\b`,
	},
	// Bare code.
	// Example: IM
	{
		Name:    "bare",
		Pattern: `^\s*IM`,
	},
}
