package roster

import (
	"strings"
	"time"

	"crewswap/internal/daterange"
)

// CombineTables joins the two half-page tables of one spread row by row.
// Row i of a is followed by row i of b without b's leading info column; the
// columns after info take dates[0], dates[1], ... in order. Extra columns are
// dropped and extra dates stay empty. Either table with no data row yields nil.
func CombineTables(a, b Table, dates []time.Time) []CrewRow {
	if len(a) <= 1 || len(b) <= 1 {
		return nil
	}
	keys := daterange.Keys(dates)

	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var rows []CrewRow
	for i := 1; i < n; i++ {
		wide := append([]string(nil), a[i]...)
		if len(b[i]) > 1 {
			wide = append(wide, b[i][1:]...)
		}
		if len(wide) == 0 || strings.TrimSpace(wide[0]) == "" {
			continue
		}

		row := NewCrewRow(wide[0])
		for j, cell := range wide[1:] {
			if j >= len(keys) {
				break
			}
			if strings.TrimSpace(cell) == "" {
				continue
			}
			row.Activities[keys[j]] = cell
		}
		rows = append(rows, row)
	}
	return rows
}
