// Command harvest pages article metadata for one subscription out of
// the registry API, indexes it, and queues each DOI for scraping.
//
// Usage: harvest <issn>
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/sagepublishing/bds-scraping/internal/crossref"
	"github.com/sagepublishing/bds-scraping/internal/harvest"
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
		slog.Error("no subscription key given; pass an ISSN argument or set HARVEST_ISSN")
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

	client := crossref.NewClient(cfg.Crossref)
	harvester := harvest.New(client, stores.Cursors, stores.Records, stores.Queue)

	stats, err := harvester.Run(ctx, issn)
	if err != nil {
		slog.Error("harvest failed", "issn", issn, "error", err,
			"pages", stats.Pages, "records", stats.Records)
		os.Exit(1)
	}
}
