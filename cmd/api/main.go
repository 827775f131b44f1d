package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vitibrasil/internal/api"
	"vitibrasil/internal/config"
	"vitibrasil/internal/crawler"
	"vitibrasil/internal/logging"
	"vitibrasil/internal/observability"
	"vitibrasil/internal/provenance"
	"vitibrasil/internal/retrieval"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	slog.Info("configuration loaded",
		"port", cfg.Port,
		"base_url", cfg.BaseURL,
		"data_dir", cfg.DataDir,
		"retry_attempts", cfg.RetryAttempts,
		"aggregate_workers", cfg.AggregateWorkers,
	)

	metrics := observability.Start(cfg.MetricsPort)

	events := openEvents(cfg.RedisURL)

	coordinator := &retrieval.Coordinator{
		Scraper: crawler.NewClient(cfg.HTTPTimeout, cfg.RetryAttempts, cfg.RetryBackoff),
		BaseURL: cfg.BaseURL,
		DataDir: cfg.DataDir,
		Events:  events,
	}

	handler := api.NewServer(api.Options{
		Retriever:    coordinator,
		Events:       events,
		Workers:      cfg.AggregateWorkers,
		Timeout:      cfg.RequestTimeout,
		ScrapeBudget: cfg.ScrapeBudget,
		CORSOrigins:  cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	idle := make(chan struct{})
	go func() {
		defer close(idle)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		if err := metrics.Shutdown(ctx); err != nil {
			slog.Error("metrics shutdown error", "error", err)
		}
		if rs, ok := events.(*provenance.RedisStore); ok {
			rs.Close()
		}
	}()

	slog.Info("server starting", "addr", server.Addr, "metrics_port", cfg.MetricsPort)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-idle
	slog.Info("server stopped")
}

// openEvents usa o Redis quando configurado e acessível; senão, memória.
func openEvents(redisURL string) provenance.Store {
	if redisURL == "" {
		slog.Info("REDIS_URL not set, keeping retrieval history in memory")
		return provenance.NewMemoryStore()
	}

	rs := provenance.NewRedisStore(redisURL)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rs.Ping(ctx); err != nil {
		slog.Warn("redis unavailable, keeping retrieval history in memory", "error", err)
		rs.Close()
		return provenance.NewMemoryStore()
	}

	slog.Info("retrieval history stored in redis")
	return rs
}
