package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"vitibrasil/internal/catalog"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

type page struct {
	Offset int
	Limit  int
}

func parsePage(r *http.Request) (page, error) {
	p := page{Offset: 0, Limit: defaultLimit}
	q := r.URL.Query()

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return page{}, &ValidationError{Code: "invalid_offset", Message: "offset must be an integer >= 0"}
		}
		p.Offset = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			return page{}, &ValidationError{
				Code:    "invalid_limit",
				Message: fmt.Sprintf("limit must be an integer between 1 and %d", maxLimit),
			}
		}
		p.Limit = n
	}
	return p, nil
}

// paginate returns items[offset:offset+limit], clamped to the slice.
func paginate[T any](items []T, p page) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}

// parseKey reads and validates {category} and {year} for the domain.
func parseKey(r *http.Request, d catalog.Domain) (string, int, error) {
	var category string
	if d.HasCategories() {
		category = chi.URLParam(r, "category")
		if _, ok := d.Category(category); !ok {
			return "", 0, &ValidationError{
				Code:    "invalid_category",
				Message: fmt.Sprintf("Invalid category '%s'. Allowed categories: %s", category, d.AllowedList()),
			}
		}
	}

	raw := chi.URLParam(r, "year")
	year, err := strconv.Atoi(raw)
	if err != nil {
		return "", 0, &ValidationError{
			Code:    "invalid_year",
			Message: fmt.Sprintf("Invalid year '%s'. Available range: %d to %d", raw, d.StartYear, d.EndYear),
		}
	}
	if !d.ValidYear(year) {
		return "", 0, &ValidationError{
			Code:    "invalid_year",
			Message: fmt.Sprintf("Year out of range. Available range: %d to %d", d.StartYear, d.EndYear),
		}
	}
	return category, year, nil
}
