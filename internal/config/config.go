package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"vitibrasil/internal/catalog"
)

type Config struct {
	Port             string
	MetricsPort      string
	BaseURL          string
	DataDir          string
	HTTPTimeout      time.Duration
	RetryAttempts    int
	RetryBackoff     time.Duration
	AggregateWorkers int
	RequestTimeout   time.Duration
	ScrapeBudget     time.Duration // tempo total de site por listagem "all"
	RedisURL         string
	DatabaseURL      string
	LogLevel         string
	LogFormat        string
	CORSOrigins      []string
	ShutdownTimeout  time.Duration
}

// Load reads .env (project root first, then the working directory) and the
// environment, applying defaults and validating the result.
func Load() (*Config, error) {
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),
		BaseURL:     getEnv("VITIBRASIL_BASE_URL", catalog.DefaultBaseURL),
		DataDir:     getEnv("DATA_DIR", "./data"),
		RedisURL:    os.Getenv("REDIS_URL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		CORSOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	var err error
	if cfg.HTTPTimeout, err = getDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.RetryAttempts, err = getInt("RETRY_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.RetryBackoff, err = getDuration("RETRY_BACKOFF", 500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.AggregateWorkers, err = getInt("AGGREGATE_WORKERS", 8); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 2*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ScrapeBudget, err = getDuration("AGGREGATE_SCRAPE_BUDGET", time.Minute); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges so the server fails fast on bad settings.
func (c *Config) Validate() error {
	var errs []error

	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("PORT must be numeric, got %q", c.Port))
	}
	if _, err := strconv.Atoi(c.MetricsPort); err != nil {
		errs = append(errs, fmt.Errorf("METRICS_PORT must be numeric, got %q", c.MetricsPort))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT must be positive"))
	}
	// Sem limite de tentativas o site pode prender a requisição indefinidamente.
	if c.RetryAttempts < 1 || c.RetryAttempts > 10 {
		errs = append(errs, fmt.Errorf("RETRY_ATTEMPTS must be between 1 and 10, got %d", c.RetryAttempts))
	}
	if c.RetryBackoff < 0 {
		errs = append(errs, errors.New("RETRY_BACKOFF must not be negative"))
	}
	if c.AggregateWorkers < 1 {
		errs = append(errs, fmt.Errorf("AGGREGATE_WORKERS must be at least 1, got %d", c.AggregateWorkers))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	// A listagem "all" precisa de tempo para ler os snapshots depois do site.
	if c.ScrapeBudget <= 0 || c.ScrapeBudget >= c.RequestTimeout {
		errs = append(errs, fmt.Errorf("AGGREGATE_SCRAPE_BUDGET must be positive and below REQUEST_TIMEOUT (%v), got %v", c.RequestTimeout, c.ScrapeBudget))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR must not be empty"))
	}

	return errors.Join(errs...)
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getInt(k string, d int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return d, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", k, v)
	}
	return n, nil
}

func getDuration(k string, d time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return d, nil
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", k, v)
	}
	return dur, nil
}

func getList(k string, d []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
