package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"vitibrasil/internal/catalog"
	"vitibrasil/internal/config"
	"vitibrasil/internal/crawler"
	"vitibrasil/internal/db"
	"vitibrasil/internal/harvest"
	"vitibrasil/internal/logging"
	"vitibrasil/internal/repository"
	"vitibrasil/internal/snapshot"
)

// go run ./cmd/crawler -domain=production
// go run ./cmd/crawler -domain=import -category=vinhos -from=2015 -to=2024 -db
// go run ./cmd/crawler -domain=export -rebuild
func main() {
	domainKey := flag.String("domain", "", "Aba a coletar: production, processing, commercialization, import ou export")
	category := flag.String("category", "", "Subcategoria; vazio coleta todas")
	from := flag.Int("from", 0, "Primeiro ano (padrão: início da série)")
	to := flag.Int("to", 0, "Último ano (padrão: fim da série)")
	out := flag.String("out", "", "Diretório dos snapshots (padrão: DATA_DIR)")
	useDB := flag.Bool("db", false, "Grava as linhas coletadas no Postgres (DATABASE_URL)")
	rebuild := flag.Bool("rebuild", false, "Regera os snapshots a partir do Postgres, sem acessar o site")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	d, ok := catalog.Lookup(*domainKey)
	if !ok {
		slog.Error("unknown domain", "domain", *domainKey)
		flag.Usage()
		os.Exit(2)
	}

	categories := []string{*category}
	if d.HasCategories() && *category == "" {
		categories = d.CategoryKeys()
	}
	if *from == 0 {
		*from = d.StartYear
	}
	if *to == 0 {
		*to = d.EndYear
	}
	if *out == "" {
		*out = cfg.DataDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var repo *repository.HarvestRepository
	if *useDB || *rebuild {
		if cfg.DatabaseURL == "" {
			slog.Error("DATABASE_URL is required with -db or -rebuild")
			os.Exit(1)
		}
		pool, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		repo = &repository.HarvestRepository{DB: pool}
		if err := repo.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare schema", "error", err)
			os.Exit(1)
		}
	}

	h := &harvest.Harvester{
		Scraper: crawler.NewClient(cfg.HTTPTimeout, cfg.RetryAttempts, cfg.RetryBackoff),
		BaseURL: cfg.BaseURL,
		Workers: cfg.AggregateWorkers,
	}
	if *useDB {
		h.Sink = repo
	}

	failed := 0
	for _, c := range categories {
		var sheet *snapshot.Sheet
		if *rebuild {
			sheet, err = fromDatabase(ctx, repo, d, c, *from, *to)
		} else {
			var rep *harvest.Report
			rep, err = h.Run(ctx, d, c, *from, *to)
			if rep != nil {
				sheet = rep.Sheet
			}
		}
		if err != nil {
			slog.Error("harvest failed", "domain", d.Key, "category", c, "error", err)
			failed++
			continue
		}

		path, err := writeSheet(*out, d, c, sheet)
		if err != nil {
			slog.Error("failed to write snapshot", "domain", d.Key, "category", c, "error", err)
			failed++
			continue
		}
		slog.Info("snapshot written", "path", path, "years", len(sheet.Years()))
	}

	if failed > 0 {
		os.Exit(1)
	}
	slog.Info("Crawler finalizado")
}

// fromDatabase monta a planilha com o que já foi gravado no Postgres.
func fromDatabase(ctx context.Context, repo *repository.HarvestRepository, d catalog.Domain, category string, from, to int) (*snapshot.Sheet, error) {
	sheet := snapshot.NewSheet(d.NameColumn, d.Layout == catalog.NameAmountValue)
	for year := from; year <= to; year++ {
		list, err := repo.List(ctx, d.Key, category, year)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			continue
		}
		sheet.Add(year, repository.Rows(list))
	}
	if len(sheet.Years()) == 0 {
		return nil, harvest.ErrNothingHarvested
	}
	return sheet, nil
}

// writeSheet writes to a temporary file first so readers never see a
// half-written snapshot.
func writeSheet(dir string, d catalog.Domain, category string, sheet *snapshot.Sheet) (string, error) {
	name, err := d.SnapshotFile(category)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if err := sheet.Write(tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename %s: %w", path, err)
	}
	return path, nil
}
