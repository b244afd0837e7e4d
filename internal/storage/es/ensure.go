package es

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

func ensureIndex(ctx context.Context, client *elasticsearch.TypedClient, name string, mappings types.TypeMapping) error {
	exists, err := client.Indices.Exists(name).Do(ctx)
	if err != nil {
		return fmt.Errorf("check if index exists: %w", err)
	}
	if exists {
		slog.Debug("index already exists", "index", name)
		return nil
	}

	res, err := client.Indices.Create(name).Mappings(&mappings).Do(ctx)
	if err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	if !res.Acknowledged {
		return fmt.Errorf("index creation was not acknowledged: %s", name)
	}

	slog.Info("index created", "index", name)
	return nil
}
