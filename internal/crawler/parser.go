package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"vitibrasil/internal/catalog"
	"vitibrasil/internal/model"
)

// tableSelector picks the data table; the page also has layout tables.
const tableSelector = "table.tb_base.tb_dados"

// RowParser turns the cell texts of one body row into a Row.
type RowParser func(cells []string, year int) model.Row

// NameAmount parses "produto | quantidade" rows.
func NameAmount(cells []string, year int) model.Row {
	return model.Row{Name: cells[0], Year: year, Amount: cells[1]}
}

// NameAmountValue parses "país | quantidade (kg) | valor (US$)" rows.
func NameAmountValue(cells []string, year int) model.Row {
	return model.Row{Name: cells[0], Year: year, Amount: cells[1], Value: cells[2]}
}

// ColumnRange bounds the number of cells a data row may have. Rows outside it
// are separators and get skipped.
type ColumnRange struct {
	Min, Max int
}

func (r ColumnRange) contains(n int) bool {
	return n >= r.Min && n <= r.Max
}

// ForLayout returns the parser and column range used for a tab layout.
func ForLayout(l catalog.Layout) (RowParser, ColumnRange) {
	n := l.Columns()
	if l == catalog.NameAmountValue {
		return NameAmountValue, ColumnRange{Min: n, Max: n}
	}
	return NameAmount, ColumnRange{Min: n, Max: n}
}

// Table is what was read from one page.
type Table struct {
	Rows   []model.Row
	Footer []string // células do tfoot depois do rótulo "Total"
}

// Scrape fetches url and parses its data table.
func (c *Client) Scrape(ctx context.Context, url string, year int, parse RowParser, cols ColumnRange) (Table, error) {
	body, err := c.Fetch(ctx, url)
	if err != nil {
		return Table{}, err
	}

	t, err := ParseTable(bytes.NewReader(body), year, parse, cols)
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			ce.URL = url
		}
		return Table{}, err
	}
	return t, nil
}

// ParseTable extracts the rows of the data table in an HTML page.
func ParseTable(r io.Reader, year int, parse RowParser, cols ColumnRange) (Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Table{}, &Error{Kind: KindTableNotFound, Err: fmt.Errorf("parse html: %w", err)}
	}

	table := doc.Find(tableSelector).First()
	if table.Length() == 0 {
		return Table{}, &Error{Kind: KindTableNotFound}
	}

	var (
		t     Table
		total int
	)
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		total++
		cells := texts(tr.Find("td"))
		if !cols.contains(len(cells)) {
			return
		}
		t.Rows = append(t.Rows, parse(cells, year))
	})

	if total > 0 && len(t.Rows) == 0 {
		return Table{}, &Error{
			Kind: KindRowShapeMismatch,
			Err:  fmt.Errorf("%d body rows, none with %d-%d cells", total, cols.Min, cols.Max),
		}
	}

	if foot := texts(table.Find("tfoot").First().Find("td")); len(foot) > 1 {
		t.Footer = foot[1:]
	}

	return t, nil
}

func texts(s *goquery.Selection) []string {
	out := make([]string, 0, s.Length())
	s.Each(func(_ int, td *goquery.Selection) {
		out = append(out, strings.Join(strings.Fields(td.Text()), " "))
	})
	return out
}
