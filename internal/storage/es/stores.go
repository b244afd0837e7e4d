package es

import (
	"context"
	"fmt"
)

// Stores bundles the Elasticsearch-backed implementations sharing one
// client.
type Stores struct {
	Cursors  *CursorStore
	Records  *RecordIndexer
	Queue    *Queue
	Articles *ArticleStore
}

// NewStores connects to the cluster and makes sure every index exists,
// so a fresh deployment does not trip the empty-index check.
func NewStores(ctx context.Context, cfg ClientConfig) (*Stores, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	s := &Stores{
		Cursors:  NewCursorStore(client, cfg.CursorIndex),
		Records:  NewRecordIndexer(client, cfg.RecordIndex),
		Queue:    NewQueue(client, cfg.QueueIndex),
		Articles: NewArticleStore(client, cfg.ArticleIndex, cfg.RecordIndex),
	}

	for _, ensure := range []func(context.Context) error{
		s.Cursors.EnsureIndex,
		s.Records.EnsureIndex,
		s.Queue.EnsureIndex,
		s.Articles.EnsureIndex,
	} {
		if err := ensure(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure index exists: %w", err)
		}
	}

	return s, nil
}
