package snapshot

import (
	"strconv"

	"vitibrasil/internal/model"
)

// Rows converts loaded records to the row shape the site scraper produces, so
// the formatter does not care where the data came from.
func Rows(records []Record, year int, nameColumn string, paired bool) []model.Row {
	n := 1
	if paired {
		n = 2
	}
	keys := Keys(year, n)

	rows := make([]model.Row, len(records))
	for i, rec := range records {
		amount, ok := rec[keys[0]]
		if !ok {
			// arquivo de comércio exterior com uma só coluna por ano
			amount = rec[strconv.Itoa(year)]
		}
		rows[i] = model.Row{
			Name:   rec[nameColumn],
			Year:   year,
			Amount: amount,
		}
		if paired {
			rows[i].Value = rec[keys[1]]
		}
	}
	return rows
}
