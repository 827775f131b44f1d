package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"vitibrasil/internal/catalog"
	"vitibrasil/internal/format"
	"vitibrasil/internal/logging"
	"vitibrasil/internal/model"
	"vitibrasil/internal/retrieval"
)

// formatter builds the public records of one domain from raw rows.
type formatter[T any] func(rows []model.Row, opts format.Options) []T

// endpoint serves the routes of one domain; T is its public record type.
type endpoint[T any] struct {
	srv    *Server
	domain catalog.Domain
	format formatter[T]
}

func mount[T any](s *Server, d catalog.Domain, f formatter[T]) {
	e := &endpoint[T]{srv: s, domain: d, format: f}

	s.router.Route("/"+d.Key, func(r chi.Router) {
		r.Get("/all", e.all)
		r.Get("/sources", e.sources)
		if d.HasCategories() {
			r.Get("/{category}/{year}", e.byYear)
			r.Get("/{category}/{year}/totals", e.totals)
		} else {
			r.Get("/{year}", e.byYear)
			r.Get("/{year}/totals", e.totals)
		}
	})
}

func (e *endpoint[T]) byYear(w http.ResponseWriter, r *http.Request) {
	p, err := parsePage(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	category, year, err := parseKey(r, e.domain)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := e.srv.retriever.Get(r.Context(), e.domain, category, year)
	if err != nil {
		respondError(w, r, err)
		return
	}

	records := e.format(res.Rows, format.Options{Year: year, Category: e.domain.CategoryName(category)})
	if len(records) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, paginate(records, p))
}

func (e *endpoint[T]) totals(w http.ResponseWriter, r *http.Request) {
	category, year, err := parseKey(r, e.domain)
	if err != nil {
		respondError(w, r, err)
		return
	}

	res, err := e.srv.retriever.Get(r.Context(), e.domain, category, year)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s := format.Totals(res.Rows, res.Footer, e.domain.Layout != catalog.NameAmountValue)
	s.Year = year
	s.Source = string(res.Source)
	if category != "" {
		s.Category = e.domain.CategoryName(category)
	}
	respondJSON(w, http.StatusOK, s)
}

type job struct {
	category string
	year     int
}

// all walks every (category, year) of the domain. Failures of a single key are
// logged and skipped; the order of the result does not depend on scheduling.
func (e *endpoint[T]) all(w http.ResponseWriter, r *http.Request) {
	p, err := parsePage(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	// Uma falha de rede abre o disjuntor: as demais chaves vão direto ao snapshot.
	ctx, release := retrieval.WithBreaker(r.Context(), e.srv.budget)
	defer release()
	logger := logging.FromContext(ctx).With("domain", e.domain.Key)

	categories := e.domain.CategoryKeys()
	if len(categories) == 0 {
		categories = []string{""}
	}
	var jobs []job
	for _, c := range categories {
		for _, y := range e.domain.Years() {
			jobs = append(jobs, job{category: c, year: y})
		}
	}

	results := make([][]T, len(jobs))
	var g errgroup.Group
	g.SetLimit(e.srv.workers)
	for i, j := range jobs {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res, err := e.srv.retriever.Get(ctx, e.domain, j.category, j.year)
			if err != nil {
				logger.Warn("skipping key in aggregate", "category", j.category, "year", j.year, "error", err)
				return nil
			}
			results[i] = e.format(res.Rows, format.Options{
				Year:     j.year,
				Category: e.domain.CategoryName(j.category),
				Stamp:    true,
			})
			return nil
		})
	}
	g.Wait()

	if ctx.Err() != nil {
		logger.Info("aggregate abandoned", "error", ctx.Err())
		return
	}

	var records []T
	for _, part := range results {
		records = append(records, part...)
	}
	logger.Info("aggregate built", "keys", len(jobs), "records", len(records))

	if len(records) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, paginate(records, p))
}

func (e *endpoint[T]) sources(w http.ResponseWriter, r *http.Request) {
	events, err := e.srv.events.Recent(r.Context(), e.domain.Key)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}
