// Package api serves the Vitibrasil statistics over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"vitibrasil/internal/catalog"
	"vitibrasil/internal/format"
	"vitibrasil/internal/logging"
	"vitibrasil/internal/model"
	"vitibrasil/internal/provenance"
	"vitibrasil/internal/retrieval"
)

// Retriever is satisfied by *retrieval.Coordinator.
type Retriever interface {
	Get(ctx context.Context, d catalog.Domain, category string, year int) (retrieval.Result, error)
}

type Options struct {
	Retriever    Retriever
	Events       provenance.Store
	Workers      int           // paralelismo das listagens "all"
	Timeout      time.Duration // por requisição; padrão 2 minutos
	ScrapeBudget time.Duration // tempo de site de uma listagem "all"; padrão Timeout/2
	CORSOrigins  []string
}

type Server struct {
	router    *chi.Mux
	retriever Retriever
	events    provenance.Store
	workers   int
	budget    time.Duration
}

func NewServer(opts Options) *Server {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.ScrapeBudget <= 0 || opts.ScrapeBudget >= opts.Timeout {
		opts.ScrapeBudget = opts.Timeout / 2
	}
	if opts.Events == nil {
		opts.Events = provenance.NewMemoryStore()
	}

	s := &Server{
		router:    chi.NewRouter(),
		retriever: opts.Retriever,
		events:    opts.Events,
		workers:   opts.Workers,
		budget:    opts.ScrapeBudget,
	}
	s.setupMiddleware(opts.CORSOrigins, opts.Timeout)
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware(origins []string, timeout time.Duration) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(timeout))

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"message": "API is running!"})
	})
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mount[model.Production](s, catalog.Production, format.Production)
	mount[model.Processing](s, catalog.Processing, format.Processing)
	mount[model.Commercialization](s, catalog.Commercialization, format.Commercialization)
	mount[model.Trade](s, catalog.Import, format.Trade)
	mount[model.Trade](s, catalog.Export, format.Trade)
}

// requestLogger logs one line per request with status and duration.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logging.FromContext(r.Context()).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", r.RemoteAddr,
		)
	})
}
