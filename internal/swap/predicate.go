package swap

import (
	"crewswap/internal/activity"
	"crewswap/internal/roster"
)

// Predicate decides whether a row is an eligible swap partner.
type Predicate func(roster.CrewRow) bool

// NotAlias excludes the requester's own row.
func NotAlias(alias string) Predicate {
	alias = roster.AliasOf(alias)
	return func(r roster.CrewRow) bool { return r.Alias != alias }
}

// SamePosition keeps rows of the requester's rank.
func SamePosition(p roster.Position) Predicate {
	return func(r roster.CrewRow) bool { return r.Position == p }
}

// SameTraining keeps rows whose training flag matches the requester's.
func SameTraining(inTraining bool) Predicate {
	return func(r roster.CrewRow) bool { return r.InTraining == inTraining }
}

// FreeOn keeps rows with a day off or leave on date.
func FreeOn(date string) Predicate {
	return func(r roster.CrewRow) bool {
		cell := r.Activity(date)
		return activity.Has(cell, activity.CodeDayOff) || activity.Has(cell, activity.CodeLeave)
	}
}

// All combines predicates in order, stopping at the first rejection.
func All(preds ...Predicate) Predicate {
	return func(r roster.CrewRow) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}
