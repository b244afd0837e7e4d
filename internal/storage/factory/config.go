package factory

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sagepublishing/bds-scraping/internal/storage"
	"github.com/sagepublishing/bds-scraping/internal/storage/es"
	"github.com/sagepublishing/bds-scraping/internal/storage/pg"
)

const (
	defaultRecordIndex  = "crossref-md"
	defaultCursorIndex  = "issn-cursors"
	defaultQueueIndex   = "doi-queue"
	defaultArticleIndex = "scraped-articles"
)

type StorageConfig struct {
	storage.Type
	Pg *pg.PoolConfig
	Es *es.ClientConfig
}

func LoadEnv() (*StorageConfig, error) {
	storageType := storage.Type(os.Getenv("STORAGE_TYPE"))
	if storageType == "" {
		storageType = storage.ES
	}
	if storageType != storage.ES && storageType != storage.PG {
		slog.Error("Invalid STORAGE_TYPE environment variable value", "value", storageType)
		return nil, fmt.Errorf(
			"invalid STORAGE_TYPE environment variable value: %s, expected one of %v",
			storageType,
			[]storage.Type{storage.ES, storage.PG})
	}

	var esCfg *es.ClientConfig
	if storageType == storage.ES {
		esCfg = &es.ClientConfig{
			Addresses:    strings.Split(os.Getenv("ES_ADDRESSES"), ","),
			Username:     os.Getenv("ES_USERNAME"),
			Password:     os.Getenv("ES_PASSWORD"),
			RecordIndex:  envOrDefault("ES_RECORD_INDEX", defaultRecordIndex),
			CursorIndex:  envOrDefault("ES_CURSOR_INDEX", defaultCursorIndex),
			QueueIndex:   envOrDefault("ES_QUEUE_INDEX", defaultQueueIndex),
			ArticleIndex: envOrDefault("ES_ARTICLE_INDEX", defaultArticleIndex),
		}
		if len(esCfg.Addresses) == 0 || esCfg.Addresses[0] == "" {
			slog.Error("Elasticsearch configuration is incomplete", "addresses", esCfg.Addresses)
			return nil, fmt.Errorf("elasticsearch configuration is incomplete: ES_ADDRESSES is missing")
		}
	}

	var pgCfg *pg.PoolConfig
	if storageType == storage.PG {
		pgCfg = &pg.PoolConfig{
			ConnStr: os.Getenv("PG_CONNECTION_STRING"),
		}
		if pgCfg.ConnStr == "" {
			slog.Error("PostgreSQL connection string is not set")
			return nil, fmt.Errorf("PostgreSQL connection string is not set")
		}
	}

	return &StorageConfig{
		Type: storageType,
		Pg:   pgCfg,
		Es:   esCfg,
	}, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
