package format

import (
	"strings"

	"vitibrasil/internal/model"
)

// Totals summarises a table: every header row becomes a group total and the
// grand total comes from the site footer when it was read, otherwise from the
// group totals, otherwise from the leaf rows. With grouped false every row is a
// leaf.
func Totals(rows []model.Row, footer []string, grouped bool) model.Summary {
	s := model.Summary{Groups: []model.GroupTotal{}}

	var leafAmount, leafValue int64
	for _, r := range rows {
		name := strings.TrimSpace(r.Name)
		amount, value := ParseAmount(r.Amount), ParseAmount(r.Value)
		if grouped && IsHeader(name) {
			s.Groups = append(s.Groups, model.GroupTotal{Type: name, Amount: amount, Value: value})
			continue
		}
		leafAmount += amount
		leafValue += value
	}

	switch {
	case len(footer) > 0 && ParseAmount(footer[0]) > 0:
		s.Total = ParseAmount(footer[0])
		if len(footer) > 1 {
			s.TotalValue = ParseAmount(footer[1])
		}
	case len(s.Groups) > 0:
		for _, g := range s.Groups {
			s.Total += g.Amount
			s.TotalValue += g.Value
		}
	default:
		s.Total, s.TotalValue = leafAmount, leafValue
	}

	return s
}
