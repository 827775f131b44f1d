// Package harvest scrapes a range of years of one domain/category and turns
// the result into a snapshot sheet, optionally persisting the raw rows.
package harvest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"vitibrasil/internal/catalog"
	"vitibrasil/internal/crawler"
	"vitibrasil/internal/model"
	"vitibrasil/internal/retrieval"
	"vitibrasil/internal/snapshot"
)

// ErrNothingHarvested is returned when every year of the range failed.
var ErrNothingHarvested = errors.New("harvest: no year could be scraped")

// Sink receives the rows of each harvested year.
type Sink interface {
	ReplaceYear(ctx context.Context, domain, category string, year int, rows []model.HarvestedRow) error
}

type Harvester struct {
	Scraper retrieval.Scraper
	BaseURL string
	Workers int
	Sink    Sink // opcional
	Logger  *slog.Logger
}

// Report describes one run.
type Report struct {
	RunID  uuid.UUID
	Sheet  *snapshot.Sheet
	Failed []int
}

// Run scrapes every year in [from, to]. Years that fail are logged and left
// out of the sheet; the run only fails when nothing was scraped or the sink
// rejects a year.
func (h *Harvester) Run(ctx context.Context, d catalog.Domain, category string, from, to int) (*Report, error) {
	if from > to || !d.ValidYear(from) || !d.ValidYear(to) {
		return nil, fmt.Errorf("harvest: invalid range %d-%d for %s (available %d to %d)", from, to, d.Key, d.StartYear, d.EndYear)
	}
	if d.HasCategories() {
		if _, ok := d.Category(category); !ok {
			return nil, fmt.Errorf("harvest: invalid category %q for %s", category, d.Key)
		}
	}

	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("domain", d.Key, "category", category)

	workers := h.Workers
	if workers < 1 {
		workers = 1
	}

	years := make([]int, 0, to-from+1)
	for y := from; y <= to; y++ {
		years = append(years, y)
	}

	parse, cols := crawler.ForLayout(d.Layout)
	tables := make([]*crawler.Table, len(years))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, year := range years {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			url, err := d.URL(h.BaseURL, category, year)
			if err != nil {
				return err
			}
			t, err := h.Scraper.Scrape(ctx, url, year, parse, cols)
			if err != nil {
				logger.Warn("year skipped", "year", year, "kind", crawler.KindOf(err), "error", err)
				return nil
			}
			tables[i] = &t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		RunID: uuid.New(),
		Sheet: snapshot.NewSheet(d.NameColumn, d.Layout == catalog.NameAmountValue),
	}
	now := time.Now().UTC()

	for i, year := range years {
		t := tables[i]
		if t == nil {
			report.Failed = append(report.Failed, year)
			continue
		}
		report.Sheet.Add(year, t.Rows)

		if h.Sink == nil {
			continue
		}
		if err := h.Sink.ReplaceYear(ctx, d.Key, category, year, harvested(report.RunID, d.Key, category, year, t.Rows, now)); err != nil {
			return nil, fmt.Errorf("harvest: save %d: %w", year, err)
		}
	}

	if len(report.Sheet.Years()) == 0 {
		return nil, ErrNothingHarvested
	}
	logger.Info("harvest finished",
		"run_id", report.RunID,
		"years", len(report.Sheet.Years()),
		"failed", len(report.Failed),
	)
	return report, nil
}

func harvested(run uuid.UUID, domain, category string, year int, rows []model.Row, at time.Time) []model.HarvestedRow {
	out := make([]model.HarvestedRow, len(rows))
	for i, r := range rows {
		out[i] = model.HarvestedRow{
			ID:          uuid.New(),
			RunID:       run,
			Domain:      domain,
			Category:    category,
			Year:        year,
			Position:    i,
			Name:        r.Name,
			Amount:      r.Amount,
			Value:       r.Value,
			HarvestedAt: at,
		}
	}
	return out
}
