// Package format turns raw Vitibrasil rows into the public records served by
// the API.
//
// The site interleaves group headers ("VINHO DE MESA", "TINTAS") with the data
// rows they label. Headers are recognised by being entirely upper-case; they
// never appear in the output, they only set the type of the rows that follow.
package format

import (
	"strconv"
	"strings"
	"unicode"

	"vitibrasil/internal/model"
)

// Entry is a non-header row with parsed numbers and the header it sits under.
type Entry struct {
	Name   string
	Amount int64
	Value  int64
	Type   string
}

// state is the fold carried across rows: the last header seen. Tables
// without groups (import, export) never fold, so an upper-case country is
// an ordinary row.
type state struct {
	grouped bool
	header  string
}

func (s state) step(r model.Row) (state, Entry, bool) {
	name := strings.TrimSpace(r.Name)
	if s.grouped && IsHeader(name) {
		return state{grouped: true, header: name}, Entry{}, false
	}

	e := Entry{
		Name:   name,
		Amount: ParseAmount(r.Amount),
		Value:  ParseAmount(r.Value),
		Type:   s.header,
	}
	// Tudo zero significa "sem dado" no site, não um zero informado.
	if e.Amount == 0 && e.Value == 0 {
		return s, Entry{}, false
	}
	return s, e, true
}

// Entries folds rows into entries, dropping headers and all-zero rows.
func Entries(rows []model.Row) []Entry {
	return entries(rows, true)
}

func entries(rows []model.Row, grouped bool) []Entry {
	var (
		st  = state{grouped: grouped}
		out = make([]Entry, 0, len(rows))
	)
	for _, r := range rows {
		var (
			e  Entry
			ok bool
		)
		st, e, ok = st.step(r)
		if ok {
			out = append(out, e)
		}
	}
	return out
}

// IsHeader reports whether s has at least one cased letter and no lower-case
// ones.
func IsHeader(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			return false
		case unicode.IsUpper(r), unicode.IsTitle(r):
			cased = true
		}
	}
	return cased
}

// ParseAmount converts the site's number format to an integer: "." is a
// thousand separator and "-" means zero. Anything that still fails to parse
// counts as zero.
func ParseAmount(raw string) int64 {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return 0
	}
	s = strings.ReplaceAll(s, ".", "")
	n, err := strconv.ParseUint(s, 10, 63)
	if err != nil {
		return 0
	}
	return int64(n)
}

// Options controls the aggregate stamping done for the "all" listings.
type Options struct {
	Year     int
	Category string // display name
	Stamp    bool
}

func (o Options) year() int {
	if o.Stamp {
		return o.Year
	}
	return 0
}

func (o Options) category() string {
	if o.Stamp {
		return o.Category
	}
	return ""
}

func Production(rows []model.Row, opts Options) []model.Production {
	entries := Entries(rows)
	out := make([]model.Production, len(entries))
	for i, e := range entries {
		out[i] = model.Production{
			Product: e.Name,
			Amount:  e.Amount,
			Type:    e.Type,
			Year:    opts.year(),
		}
	}
	return out
}

func Commercialization(rows []model.Row, opts Options) []model.Commercialization {
	entries := Entries(rows)
	out := make([]model.Commercialization, len(entries))
	for i, e := range entries {
		out[i] = model.Commercialization{
			Product: e.Name,
			Amount:  e.Amount,
			Type:    e.Type,
			Year:    opts.year(),
		}
	}
	return out
}

func Processing(rows []model.Row, opts Options) []model.Processing {
	entries := Entries(rows)
	out := make([]model.Processing, len(entries))
	for i, e := range entries {
		out[i] = model.Processing{
			Cultivar: e.Name,
			Amount:   e.Amount,
			Type:     e.Type,
			Year:     opts.year(),
			Category: opts.category(),
		}
	}
	return out
}

// Trade formats import and export rows. Their tables have no group headers.
func Trade(rows []model.Row, opts Options) []model.Trade {
	flat := entries(rows, false)
	out := make([]model.Trade, len(flat))
	for i, e := range flat {
		out[i] = model.Trade{
			Country:  e.Name,
			Amount:   e.Amount,
			Value:    e.Value,
			Year:     opts.year(),
			Category: opts.category(),
		}
	}
	return out
}
