package model

// Row is one line of a Vitibrasil table for a single year, as read from the
// site or from a CSV snapshot. Values are kept raw ("1.234", "-", "").
type Row struct {
	Name   string
	Year   int
	Amount string
	Value  string // só importação/exportação (US$)
}
