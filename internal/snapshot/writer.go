package snapshot

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"vitibrasil/internal/format"
	"vitibrasil/internal/model"
)

// Sheet accumulates harvested rows for several years and writes them in the
// layout Load understands: control, name column, then one column per year
// (two, repeated, when Paired).
type Sheet struct {
	NameColumn string
	Paired     bool

	years []int
	keys  []string
	names map[string]string
	cells map[string]map[int][2]string
}

func NewSheet(nameColumn string, paired bool) *Sheet {
	return &Sheet{
		NameColumn: nameColumn,
		Paired:     paired,
		names:      make(map[string]string),
		cells:      make(map[string]map[int][2]string),
	}
}

// Add appends the rows scraped for one year. Rows are keyed by the header
// they sit under, so repeated names ("Tinto" under two groups) stay apart.
// Paired (trade) sheets have no headers.
func (s *Sheet) Add(year int, rows []model.Row) {
	s.years = append(s.years, year)

	group := ""
	for _, r := range rows {
		if !s.Paired && format.IsHeader(r.Name) {
			group = r.Name
		}
		key := r.Name
		if group != "" && group != r.Name {
			key = group + "_" + r.Name
		}

		if _, ok := s.names[key]; !ok {
			s.names[key] = r.Name
			s.keys = append(s.keys, key)
			s.cells[key] = make(map[int][2]string)
		}
		s.cells[key][year] = [2]string{r.Amount, r.Value}
	}
}

// Years returns the years added so far, in insertion order.
func (s *Sheet) Years() []int {
	return s.years
}

// Write writes the sheet tab-delimited. Missing cells are written as "-".
func (s *Sheet) Write(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	header := []string{"control", s.NameColumn}
	for _, y := range s.years {
		header = append(header, strconv.Itoa(y))
		if s.Paired {
			header = append(header, strconv.Itoa(y))
		}
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}

	for _, key := range s.keys {
		line := []string{key, s.names[key]}
		for _, y := range s.years {
			c, ok := s.cells[key][y]
			if !ok {
				c = [2]string{"-", "-"}
			}
			line = append(line, c[0])
			if s.Paired {
				line = append(line, c[1])
			}
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("snapshot: write row %s: %w", key, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("snapshot: flush: %w", err)
	}
	return nil
}
