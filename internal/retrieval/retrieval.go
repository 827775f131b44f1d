// Package retrieval answers a (domain, category, year) query by scraping the
// Vitibrasil site and, when that fails for any reason, reading the bundled CSV
// snapshot instead.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"vitibrasil/internal/catalog"
	"vitibrasil/internal/crawler"
	"vitibrasil/internal/logging"
	"vitibrasil/internal/model"
	"vitibrasil/internal/observability"
	"vitibrasil/internal/provenance"
	"vitibrasil/internal/snapshot"
)

// Scraper is satisfied by *crawler.Client.
type Scraper interface {
	Scrape(ctx context.Context, url string, year int, parse crawler.RowParser, cols crawler.ColumnRange) (crawler.Table, error)
}

type Result struct {
	Rows   []model.Row
	Footer []string
	Source provenance.Source
}

// DataUnavailableError means neither the site nor the snapshot could answer.
type DataUnavailableError struct {
	Domain   string
	Category string
	Year     int
	Scrape   error
	Fallback error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("retrieval: %s %s %d unavailable: scrape: %v; snapshot: %v",
		e.Domain, e.Category, e.Year, e.Scrape, e.Fallback)
}

func (e *DataUnavailableError) Unwrap() []error {
	return []error{e.Scrape, e.Fallback}
}

type Coordinator struct {
	Scraper Scraper
	BaseURL string
	DataDir string
	Events  provenance.Store
}

// Get returns the raw rows for the query. Category is ignored by domains
// without categories; callers validate it beforehand.
func (c *Coordinator) Get(ctx context.Context, d catalog.Domain, category string, year int) (Result, error) {
	logger := logging.FromContext(ctx).With("domain", d.Key, "category", category, "year", year)

	res, scrapeErr := c.guardedScrape(ctx, d, category, year)
	if scrapeErr == nil {
		observability.RetrievalsTotal.WithLabelValues(d.Key, string(provenance.SourceSite)).Inc()
		c.record(ctx, d, category, year, res, "")
		return res, nil
	}

	// Qualquer falha do site (rede, tabela ausente, layout) cai no snapshot.
	kind := crawler.KindOf(scrapeErr)
	switch {
	case errors.Is(scrapeErr, ErrSiteSkipped):
		kind = "skipped"
		logger.Debug("site skipped, using snapshot")
	default:
		if kind == "" {
			kind = "other"
		}
		observability.ScrapeFailuresTotal.WithLabelValues(d.Key, string(kind)).Inc()
		logger.Warn("site scrape failed, using snapshot", "kind", kind, "error", scrapeErr)
	}

	res, fallbackErr := c.Snapshot(d, category, year)
	if fallbackErr != nil {
		observability.UnavailableTotal.WithLabelValues(d.Key).Inc()
		c.record(ctx, d, category, year, Result{Source: provenance.SourceNone}, string(kind))
		return Result{}, &DataUnavailableError{
			Domain:   d.Key,
			Category: category,
			Year:     year,
			Scrape:   scrapeErr,
			Fallback: fallbackErr,
		}
	}

	observability.RetrievalsTotal.WithLabelValues(d.Key, string(provenance.SourceSnapshot)).Inc()
	c.record(ctx, d, category, year, res, string(kind))
	return res, nil
}

func (c *Coordinator) scrape(ctx context.Context, d catalog.Domain, category string, year int) (Result, error) {
	if c.Scraper == nil {
		return Result{}, &crawler.Error{Kind: crawler.KindNetwork, Err: fmt.Errorf("no scraper configured")}
	}

	url, err := d.URL(c.BaseURL, category, year)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	parse, cols := crawler.ForLayout(d.Layout)
	t, err := c.Scraper.Scrape(ctx, url, year, parse, cols)
	observability.ScrapeDuration.WithLabelValues(d.Key).Observe(time.Since(start).Seconds())
	if err != nil {
		return Result{}, err
	}

	return Result{Rows: t.Rows, Footer: t.Footer, Source: provenance.SourceSite}, nil
}

// Snapshot reads the query straight from the CSV snapshot.
func (c *Coordinator) Snapshot(d catalog.Domain, category string, year int) (Result, error) {
	file, err := d.SnapshotFile(category)
	if err != nil {
		return Result{}, err
	}

	recs, err := snapshot.Load(filepath.Join(c.DataDir, file), year, []string{d.NameColumn})
	if err != nil {
		return Result{}, err
	}

	paired := d.Layout == catalog.NameAmountValue
	return Result{
		Rows:   snapshot.Rows(recs, year, d.NameColumn, paired),
		Source: provenance.SourceSnapshot,
	}, nil
}

func (c *Coordinator) record(ctx context.Context, d catalog.Domain, category string, year int, res Result, kind string) {
	if c.Events == nil {
		return
	}
	err := c.Events.Append(ctx, provenance.Event{
		Domain:      d.Key,
		Category:    category,
		Year:        year,
		Source:      res.Source,
		FailureKind: kind,
		Rows:        len(res.Rows),
		At:          time.Now().UTC(),
	})
	if err != nil {
		logging.FromContext(ctx).Debug("provenance append failed", "error", err)
	}
}
