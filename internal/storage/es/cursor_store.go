package es

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"

	"github.com/sagepublishing/bds-scraping/internal/apperr"
	"github.com/sagepublishing/bds-scraping/internal/domain"
	"github.com/sagepublishing/bds-scraping/internal/storage"
)

// CursorStore keeps pagination cursors in an append-only index, one
// document per stored cursor, newest-by-timestamp authoritative.
type CursorStore struct {
	client    *elasticsearch.TypedClient
	indexName string
}

func NewCursorStore(client *elasticsearch.TypedClient, indexName string) *CursorStore {
	return &CursorStore{client: client, indexName: indexName}
}

func (s *CursorStore) EnsureIndex(ctx context.Context) error {
	return ensureIndex(ctx, s.client, s.indexName, types.TypeMapping{
		Properties: map[string]types.Property{
			"issn":      types.NewKeywordProperty(),
			"cursor":    types.NewKeywordProperty(),
			"timestamp": types.NewDateProperty(),
		},
	})
}

func (s *CursorStore) Latest(ctx context.Context, issn string) (string, bool, error) {
	exists, err := s.client.Indices.Exists(s.indexName).Do(ctx)
	if err != nil {
		return "", false, fmt.Errorf("check cursor index: %w", err)
	}
	if !exists {
		return "", false, apperr.NewEmptyIndex(s.indexName)
	}

	sortDesc := sortorder.Desc
	res, err := s.client.Search().
		Index(s.indexName).
		Query(&types.Query{
			Term: map[string]types.TermQuery{
				"issn": {Value: issn},
			},
		}).
		Sort(&types.SortOptions{
			SortOptions: map[string]types.FieldSort{
				"timestamp": {Order: &sortDesc},
			},
		}).
		Size(1).
		Do(ctx)
	if err != nil {
		return "", false, fmt.Errorf("query latest cursor: %w", err)
	}

	if len(res.Hits.Hits) == 0 {
		return "", false, nil
	}

	var cur domain.Cursor
	if err := json.Unmarshal(res.Hits.Hits[0].Source_, &cur); err != nil {
		return "", false, fmt.Errorf("unmarshal cursor document: %w", err)
	}
	return cur.Token, true, nil
}

func (s *CursorStore) Save(ctx context.Context, issn, token string) error {
	doc := domain.Cursor{
		ISSN:      issn,
		Token:     token,
		Timestamp: time.Now().UTC(),
	}

	res, err := s.client.Index(s.indexName).Document(doc).Do(ctx)
	if err != nil {
		return fmt.Errorf("store cursor: %w", err)
	}

	slog.Debug("cursor stored", "issn", issn, "index", s.indexName, "result", res.Result)
	return nil
}

var _ storage.CursorStore = (*CursorStore)(nil)
