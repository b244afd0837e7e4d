// Command scrape drains the waiting DOIs for one subscription:
// resolve, extract, persist, dequeue. Failed DOIs stay queued for the
// next drain.
//
// Usage: scrape <issn>
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/sagepublishing/bds-scraping/internal/extract"
	"github.com/sagepublishing/bds-scraping/internal/resolve"
	"github.com/sagepublishing/bds-scraping/internal/scrape"
	"github.com/sagepublishing/bds-scraping/internal/storage/factory"
)

func main() {
	appSettings := NewAppConfig()

	cfg, err := appSettings.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	issn := cfg.DefaultISSN
	if len(os.Args) > 1 {
		issn = os.Args[1]
	}
	if issn == "" {
		slog.Error("no subscription key given; pass an ISSN argument or set SCRAPE_ISSN")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stores, err := factory.New(ctx, &cfg.StorageConfig)
	if err != nil {
		slog.Error("failed to create stores", "error", err, "storageType", cfg.StorageConfig.Type)
		os.Exit(1)
	}
	defer stores.Close()

	registry, err := extract.LoadRegistry(cfg.RoutesPath, cfg.Extract)
	if err != nil {
		slog.Error("failed to load extractor routes", "error", err, "path", cfg.RoutesPath)
		os.Exit(1)
	}

	resolver := resolve.New(cfg.Resolver)
	orchestrator := scrape.New(stores.Queue, stores.Articles, resolver, registry, cfg.Orchestrator)

	stats, err := orchestrator.Drain(ctx, issn)
	if err != nil {
		slog.Error("drain failed", "issn", issn, "error", err,
			"processed", stats.Processed, "scraped", stats.Scraped)
		os.Exit(1)
	}
}
