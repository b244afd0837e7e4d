package factory

import (
	"context"
	"fmt"

	"github.com/sagepublishing/bds-scraping/internal/storage"
	"github.com/sagepublishing/bds-scraping/internal/storage/es"
	"github.com/sagepublishing/bds-scraping/internal/storage/pg"
)

// Stores is the backend-agnostic bundle handed to the pipeline
// binaries.
type Stores struct {
	Cursors  storage.CursorStore
	Records  storage.RecordIndexer
	Queue    storage.Queue
	Articles storage.ArticleStore

	closeFn func()
}

func (s *Stores) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

// New builds the store bundle for the configured backend.
func New(ctx context.Context, cfg *StorageConfig) (*Stores, error) {
	switch cfg.Type {
	case storage.ES:
		esStores, err := es.NewStores(ctx, *cfg.Es)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Cursors:  esStores.Cursors,
			Records:  esStores.Records,
			Queue:    esStores.Queue,
			Articles: esStores.Articles,
		}, nil

	case storage.PG:
		pgStores, err := pg.NewStores(ctx, *cfg.Pg)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Cursors:  pgStores.Cursors,
			Records:  pgStores.Records,
			Queue:    pgStores.Queue,
			Articles: pgStores.Articles,
			closeFn:  pgStores.Close,
		}, nil

	default:
		return nil, fmt.Errorf(string(storage.ErrUnsupportedStorage), cfg.Type)
	}
}
