package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingSetting = errors.New("missing required setting")

const (
	defaultSourceURL  = "https://template-0-beta.vercel.app/api/product"
	defaultAPIVersion = "2025-01-13"
)

type Config struct {
	SourceURL      string
	Sanity         SanityConfig
	WorkerCount    int
	HTTPTimeout    time.Duration
	MetricsPort    string
	MetricsPushURL string
	LogLevel       string

	invalid []error
}

type SanityConfig struct {
	ProjectID  string
	Dataset    string
	Token      string
	APIVersion string
	UseCDN     bool
}

func Load() *Config {
	// .env at the project root first, then the working directory
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{
		SourceURL: getEnv("SOURCE_API_URL", defaultSourceURL),
		Sanity: SanityConfig{
			ProjectID:  os.Getenv("SANITY_PROJECT_ID"),
			Dataset:    os.Getenv("SANITY_DATASET"),
			Token:      os.Getenv("SANITY_TOKEN"),
			APIVersion: getEnv("SANITY_API_VERSION", defaultAPIVersion),
		},
		MetricsPort:    os.Getenv("METRICS_PORT"),
		MetricsPushURL: os.Getenv("METRICS_PUSH_URL"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
	cfg.Sanity.UseCDN = cfg.getBool("SANITY_USE_CDN", true)
	cfg.WorkerCount = cfg.getInt("MIGRATION_WORKERS", 8)
	cfg.HTTPTimeout = cfg.getDuration("HTTP_TIMEOUT", 60*time.Second)
	return cfg
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	errs := append([]error(nil), c.invalid...)
	required := []struct {
		key, value string
	}{
		{"SANITY_PROJECT_ID", c.Sanity.ProjectID},
		{"SANITY_DATASET", c.Sanity.Dataset},
		{"SANITY_TOKEN", c.Sanity.Token},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingSetting, r.key))
		}
	}
	if c.WorkerCount < 1 {
		errs = append(errs, fmt.Errorf("MIGRATION_WORKERS must be at least 1, got %d", c.WorkerCount))
	}
	return errors.Join(errs...)
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func (c *Config) getInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.invalid = append(c.invalid, fmt.Errorf("%s: %w", k, err))
		return d
	}
	return n
}

func (c *Config) getBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.invalid = append(c.invalid, fmt.Errorf("%s: %w", k, err))
		return d
	}
	return b
}

func (c *Config) getDuration(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		c.invalid = append(c.invalid, fmt.Errorf("%s: %w", k, err))
		return d
	}
	return dur
}
