package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"

	"github.com/sagepublishing/bds-scraping/internal/domain"
	"github.com/sagepublishing/bds-scraping/internal/storage"
)

// RecordIndexer upserts bibliographic records. The DOI is the document
// id, which constrains the index to one record per DOI.
type RecordIndexer struct {
	client    *elasticsearch.TypedClient
	indexName string
}

func NewRecordIndexer(client *elasticsearch.TypedClient, indexName string) *RecordIndexer {
	return &RecordIndexer{client: client, indexName: indexName}
}

func (s *RecordIndexer) EnsureIndex(ctx context.Context) error {
	return ensureIndex(ctx, s.client, s.indexName, types.TypeMapping{
		Properties: map[string]types.Property{
			"doi":            types.NewKeywordProperty(),
			"url":            types.NewKeywordProperty(),
			"containerTitle": types.NewTextProperty(),
			"title":          types.NewTextProperty(),
			"issn":           types.NewKeywordProperty(),
			"hasFullText":    types.NewBooleanProperty(),
			"publishedAt":    types.NewDateProperty(),
			"ingestedAt":     types.NewDateProperty(),
		},
	})
}

func (s *RecordIndexer) Index(ctx context.Context, rec domain.Record) error {
	if rec.DOI == "" {
		return fmt.Errorf("record has no DOI, refusing to index")
	}

	res, err := s.client.Index(s.indexName).Id(rec.DOI).Document(rec).Do(ctx)
	if err != nil {
		return fmt.Errorf("index record %s: %w", rec.DOI, err)
	}

	slog.Debug("record indexed", "doi", rec.DOI, "index", s.indexName, "result", res.Result)
	return nil
}

// IndexBatch pushes one harvested page through a bulk indexer.
func (s *RecordIndexer) IndexBatch(ctx context.Context, recs []domain.Record) error {
	if len(recs) == 0 {
		return nil
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         s.indexName,
		Client:        s.client,
		NumWorkers:    2,
		FlushInterval: 5 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("create bulk indexer: %w", err)
	}

	var failed int64
	for _, rec := range recs {
		if rec.DOI == "" {
			slog.Warn("skipping record without DOI in batch")
			failed++
			continue
		}

		docBytes, err := json.Marshal(rec)
		if err != nil {
			slog.Error("marshal record failed", "error", err, "doi", rec.DOI)
			failed++
			continue
		}

		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: rec.DOI,
			Body:       bytes.NewReader(docBytes),
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				failed++
				if err != nil {
					slog.Error("bulk index error", "error", err, "doi", item.DocumentID)
				} else {
					slog.Error("bulk index error", "status", res.Status, "reason", res.Error.Reason, "doi", item.DocumentID)
				}
			},
		})
		if err != nil {
			failed++
			slog.Error("add record to bulk indexer failed", "error", err, "doi", rec.DOI)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("close bulk indexer: %w", err)
	}

	if failed > 0 {
		return fmt.Errorf("failed to index %d of %d records", failed, len(recs))
	}
	return nil
}

var _ storage.RecordIndexer = (*RecordIndexer)(nil)
