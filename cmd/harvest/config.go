package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/sagepublishing/bds-scraping/internal/crossref"
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

type HarvestConfig struct {
	StorageConfig factory.StorageConfig
	Crossref      crossref.ClientConfig
	DefaultISSN   string
}

func (as *AppConfig) Load() (*HarvestConfig, error) {
	err := env.LoadDotEnv(as.ENV, "cmd/harvest/.env")
	if err != nil {
		slog.Info("Failed to load .env, continuing with existing environment variables", "error", err)
	}

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		slog.Error("Failed to load storage configuration from environment", "error", err)
		return nil, err
	}

	return &HarvestConfig{
		StorageConfig: *storageCfg,
		Crossref:      crossrefFromEnv(),
		DefaultISSN:   os.Getenv("HARVEST_ISSN"),
	}, nil
}

func crossrefFromEnv() crossref.ClientConfig {
	cfg := crossref.ClientConfig{
		BaseURL:   os.Getenv("CROSSREF_BASE_URL"),
		UserAgent: os.Getenv("HTTP_USER_AGENT"),
		From:      os.Getenv("HTTP_FROM"),
	}
	if t := os.Getenv("HTTP_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.Timeout = d
		} else {
			slog.Warn("invalid HTTP_TIMEOUT, using default", "value", t)
		}
	}
	return cfg
}
