package observability

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RetrievalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitibrasil_retrievals_total",
			Help: "Consultas atendidas, por domínio e origem (site ou snapshot)",
		},
		[]string{"domain", "source"},
	)

	ScrapeFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitibrasil_scrape_failures_total",
			Help: "Falhas ao ler o site, por domínio e tipo",
		},
		[]string{"domain", "kind"},
	)

	UnavailableTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vitibrasil_unavailable_total",
			Help: "Consultas em que site e snapshot falharam",
		},
		[]string{"domain"},
	)

	ScrapeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vitibrasil_scrape_duration_seconds",
			Help:    "Duração da leitura do site, incluindo novas tentativas",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"domain"},
	)
)

// Register adds the collectors to the default registry.
func Register() {
	prometheus.MustRegister(RetrievalsTotal, ScrapeFailuresTotal, UnavailableTotal, ScrapeDuration)
}

// Start registers the collectors and serves /metrics on its own port.
func Start(port string) *http.Server {
	Register()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":" + port, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server stopped", "error", err)
		}
	}()
	return srv
}
