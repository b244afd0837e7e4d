package main

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/sagepublishing/bds-scraping/internal/extract"
	"github.com/sagepublishing/bds-scraping/internal/resolve"
	"github.com/sagepublishing/bds-scraping/internal/scrape"
	"github.com/sagepublishing/bds-scraping/internal/storage/factory"
	"github.com/sagepublishing/bds-scraping/pkg/config/env"
)

type AppConfig struct {
	ENV string
}

func NewAppConfig() *AppConfig {
	return &AppConfig{
		ENV: os.Getenv("ENV"),
	}
}

type ScrapeConfig struct {
	StorageConfig factory.StorageConfig
	Resolver      resolve.Config
	Extract       extract.ClientOptions
	Orchestrator  scrape.Config
	RoutesPath    string
	DefaultISSN   string
}

func (as *AppConfig) Load() (*ScrapeConfig, error) {
	err := env.LoadDotEnv(as.ENV, "cmd/scrape/.env")
	if err != nil {
		slog.Info("Failed to load .env, continuing with existing environment variables", "error", err)
	}

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		slog.Error("Failed to load storage configuration from environment", "error", err)
		return nil, err
	}

	userAgent := os.Getenv("HTTP_USER_AGENT")
	from := os.Getenv("HTTP_FROM")
	timeout := timeoutFromEnv()

	workers := 0
	if w := os.Getenv("SCRAPE_WORKERS"); w != "" {
		workers, err = strconv.Atoi(w)
		if err != nil {
			slog.Warn("invalid SCRAPE_WORKERS, using default", "value", w)
			workers = 0
		}
	}

	return &ScrapeConfig{
		StorageConfig: *storageCfg,
		Resolver: resolve.Config{
			BaseURL:   os.Getenv("DOI_RESOLVER_URL"),
			UserAgent: userAgent,
			From:      from,
			Timeout:   timeout,
		},
		Extract: extract.ClientOptions{
			UserAgent: userAgent,
			From:      from,
			Timeout:   timeout,
		},
		Orchestrator: scrape.Config{Workers: workers},
		RoutesPath:   os.Getenv("EXTRACTOR_ROUTES_PATH"),
		DefaultISSN:  os.Getenv("SCRAPE_ISSN"),
	}, nil
}

func timeoutFromEnv() time.Duration {
	t := os.Getenv("HTTP_TIMEOUT")
	if t == "" {
		return 0
	}
	d, err := time.ParseDuration(t)
	if err != nil {
		slog.Warn("invalid HTTP_TIMEOUT, using default", "value", t)
		return 0
	}
	return d
}
