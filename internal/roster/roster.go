// Package roster assembles crew schedules from paginated roster extracts into
// a single row-per-crew-member master table.
package roster

import (
	"strings"

	"crewswap/internal/textnorm"
)

// Table is a rectangular grid of text cells. The first row is the header.
type Table [][]string

// Position is the crew rank derived from the info block.
type Position string

const (
	Commander Position = "COMMANDER"
	Copilot   Position = "COPILOT"
	Unknown   Position = "UNKNOWN"
)

// Keywords matched against the normalised info block. Copilot is checked first:
// its keywords are the more specific ones.
var (
	copilotKeywords   = []string{"COPILOTO", "PRIMER OFICIAL", "SEGUNDO OFICIAL", "F/O"}
	commanderKeywords = []string{"COMANDANTE", "CAPITAN", "CMTE", "CDTE"}
)

// TrainingMarker flags a crew member undergoing training.
const TrainingMarker = "instruccion"

// CrewRow is one crew member's schedule.
type CrewRow struct {
	Info       string            `json:"info"`
	Alias      string            `json:"alias"`
	Position   Position          `json:"position"`
	InTraining bool              `json:"in_training"`
	Activities map[string]string `json:"activities"` // ISO date -> raw cell, sparse
}

// NewCrewRow derives alias, position and training flag from info.
func NewCrewRow(info string) CrewRow {
	return CrewRow{
		Info:       info,
		Alias:      AliasOf(info),
		Position:   PositionOf(info),
		InTraining: InTraining(info),
		Activities: make(map[string]string),
	}
}

// AliasOf returns the normalised first line of an info block.
func AliasOf(info string) string {
	return textnorm.Normalize(textnorm.FirstLine(info))
}

// PositionOf scans an info block for rank keywords.
func PositionOf(info string) Position {
	text := textnorm.Normalize(info)
	for _, kw := range copilotKeywords {
		if strings.Contains(text, kw) {
			return Copilot
		}
	}
	for _, kw := range commanderKeywords {
		if strings.Contains(text, kw) {
			return Commander
		}
	}
	return Unknown
}

// InTraining reports whether the info block carries the training marker.
func InTraining(info string) bool {
	return textnorm.Contains(info, TrainingMarker)
}

// Activity returns the raw cell for date, or "".
func (r CrewRow) Activity(date string) string {
	return r.Activities[date]
}
