package swap

import (
	"encoding/csv"
	"io"

	"github.com/jszwec/csvutil"
)

// csvRecord is the flattened download row for one candidate.
type csvRecord struct {
	Group     Group  `csv:"group"`
	Alias     string `csv:"alias"`
	Position  string `csv:"position"`
	FreeOn    string `csv:"free_on"`
	Date      string `csv:"date"`
	Activity  string `csv:"activity"`
	Itinerary string `csv:"itinerary"`
}

// WriteCSV writes candidates as a delimited table with a header row, even when empty.
func WriteCSV(w io.Writer, candidates []Candidate) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if err := enc.EncodeHeader(csvRecord{}); err != nil {
		return err
	}
	for _, c := range candidates {
		rec := csvRecord{
			Group:     c.Group,
			Alias:     c.Alias,
			Position:  string(c.Position),
			FreeOn:    c.FreeOn,
			Date:      c.Date,
			Activity:  c.Activity,
			Itinerary: c.Display,
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
