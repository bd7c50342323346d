// Package decoders imports all cell decoder packages to trigger their init() registration.
// Import this package for side effects only.
package decoders

import (
	_ "crewswap/internal/decoders/absence"
	_ "crewswap/internal/decoders/flight"
	_ "crewswap/internal/decoders/standby"
	_ "crewswap/internal/decoders/unknown"
)
