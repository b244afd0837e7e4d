package es

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"

	"github.com/sagepublishing/bds-scraping/internal/domain"
	"github.com/sagepublishing/bds-scraping/internal/storage"
)

// pendingPageSize bounds one Pending listing. Drains re-list after a
// pass, so a queue deeper than this is worked off across passes.
const pendingPageSize = 10000

// Queue stores one document per waiting DOI. The DOI is the document
// id, which makes repeated enqueues collapse into a single live entry.
type Queue struct {
	client    *elasticsearch.TypedClient
	indexName string
}

func NewQueue(client *elasticsearch.TypedClient, indexName string) *Queue {
	return &Queue{client: client, indexName: indexName}
}

func (q *Queue) EnsureIndex(ctx context.Context) error {
	return ensureIndex(ctx, q.client, q.indexName, types.TypeMapping{
		Properties: map[string]types.Property{
			"issn":       types.NewKeywordProperty(),
			"doi":        types.NewKeywordProperty(),
			"enqueuedAt": types.NewDateProperty(),
		},
	})
}

func (q *Queue) Enqueue(ctx context.Context, issn, doi string) error {
	entry := domain.QueueEntry{
		ISSN:       issn,
		DOI:        doi,
		EnqueuedAt: time.Now().UTC(),
	}

	_, err := q.client.Index(q.indexName).Id(doi).Document(entry).Do(ctx)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", doi, err)
	}

	slog.Debug("doi enqueued", "doi", doi, "issn", issn)
	return nil
}

func (q *Queue) Pending(ctx context.Context, issn string) ([]string, error) {
	sortAsc := sortorder.Asc
	res, err := q.client.Search().
		Index(q.indexName).
		Query(&types.Query{
			Term: map[string]types.TermQuery{
				"issn": {Value: issn},
			},
		}).
		Sort(&types.SortOptions{
			SortOptions: map[string]types.FieldSort{
				"enqueuedAt": {Order: &sortAsc},
			},
		}).
		Size(pendingPageSize).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending for %s: %w", issn, err)
	}

	dois := make([]string, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var entry domain.QueueEntry
		if err := json.Unmarshal(hit.Source_, &entry); err != nil {
			return nil, fmt.Errorf("unmarshal queue entry: %w", err)
		}
		dois = append(dois, entry.DOI)
	}
	return dois, nil
}

func (q *Queue) Dequeue(ctx context.Context, doi string) error {
	_, err := q.client.Delete(q.indexName, doi).Do(ctx)
	if err != nil {
		var esErr *types.ElasticsearchError
		if errors.As(err, &esErr) && esErr.Status == http.StatusNotFound {
			slog.Debug("dequeue of missing entry ignored", "doi", doi)
			return nil
		}
		return fmt.Errorf("dequeue %s: %w", doi, err)
	}

	slog.Debug("doi dequeued", "doi", doi)
	return nil
}

var _ storage.Queue = (*Queue)(nil)
