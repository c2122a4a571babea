package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gomarketplace_ingest/pkg/logger"
	"gopkg.in/yaml.v3"
)

type CatalogConfig struct {
	BaseURL        string        `yaml:"base_url" env:"CATALOG_BASE_URL" validate:"required,url"`
	ApiToken       string        `yaml:"api_token" env:"CATALOG_API_TOKEN" validate:"required"`
	AuthHeader     string        `yaml:"auth_header" env:"CATALOG_AUTH_HEADER" validate:"required"`
	RubricID       int64         `yaml:"rubric_id" env:"CATALOG_RUBRIC_ID" validate:"gt=0"`
	VendorIDs      string        `yaml:"vendor_ids" env:"CATALOG_VENDOR_IDS"`
	PageSize       int           `yaml:"page_size" env:"CATALOG_PAGE_SIZE" validate:"gt=0,lte=1000"`
	Country        string        `yaml:"country" env:"CATALOG_COUNTRY" validate:"required"`
	Currency       string        `yaml:"currency" env:"CATALOG_CURRENCY" validate:"required"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"CATALOG_REQUEST_TIMEOUT" validate:"gt=0"`
	RequestsPerSec float64       `yaml:"requests_per_second" env:"CATALOG_RPS" validate:"gt=0"`
}

type IngestConfig struct {
	RetryDelay  time.Duration `yaml:"retry_delay" env:"INGEST_RETRY_DELAY" validate:"gt=0"`
	RunInterval time.Duration `yaml:"run_interval" env:"INGEST_RUN_INTERVAL" validate:"gte=0"`
}

type MetricsConfig struct {
	Address string `yaml:"address" env:"METRICS_ADDRESS"`
}

type AppConfig struct {
	Catalog  CatalogConfig  `yaml:"catalog"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Postgres PostgresConfig `yaml:"postgres"`
	Log      logger.Config  `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DefaultConfig значения по умолчанию для партнерского API 4partners.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Catalog: CatalogConfig{
			BaseURL:        "https://api.store.4partners.io",
			AuthHeader:     "X-Auth-Token",
			RubricID:       1184363,
			VendorIDs:      "1339",
			PageSize:       100,
			Country:        "ru",
			Currency:       "rub",
			RequestTimeout: 300 * time.Second,
			RequestsPerSec: 5,
		},
		Ingest: IngestConfig{
			RetryDelay: 5 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			DBName:   "postgres",
			MaxConns: 10,
		},
		Log: logger.Config{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  500,
			MaxBackups: 3,
		},
	}
}

// LoadConfig читает yaml (если файл есть), затем .env и переменные окружения поверх него.
func LoadConfig(filename string) (*AppConfig, error) {
	cfg := DefaultConfig()

	if filename != "" {
		file, err := os.Open(filename)
		switch {
		case err == nil:
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
				return nil, fmt.Errorf("decode config %s: %w", filename, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("open config %s: %w", filename, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
