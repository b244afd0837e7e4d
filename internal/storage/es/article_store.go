package es

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"

	"github.com/sagepublishing/bds-scraping/internal/domain"
	"github.com/sagepublishing/bds-scraping/internal/storage"
)

// ArticleStore keeps scraped articles under the same DOI key the
// record index uses, so the bibliographic record and its full text
// join on the document id.
type ArticleStore struct {
	client      *elasticsearch.TypedClient
	indexName   string
	recordIndex string
}

func NewArticleStore(client *elasticsearch.TypedClient, indexName, recordIndex string) *ArticleStore {
	return &ArticleStore{client: client, indexName: indexName, recordIndex: recordIndex}
}

func (s *ArticleStore) EnsureIndex(ctx context.Context) error {
	return ensureIndex(ctx, s.client, s.indexName, types.TypeMapping{
		Properties: map[string]types.Property{
			"doi":        types.NewKeywordProperty(),
			"title":      types.NewTextProperty(),
			"abstract":   types.NewTextProperty(),
			"fulltext":   types.NewTextProperty(),
			"conclusion": types.NewTextProperty(),
			"methods":    types.NewTextProperty(),
			"references": types.NewTextProperty(),
			"pubYear":    types.NewIntegerNumberProperty(),
			"sourceUrl":  types.NewKeywordProperty(),
			"scrapedAt":  types.NewDateProperty(),
		},
	})
}

func (s *ArticleStore) Save(ctx context.Context, art domain.Article) error {
	if art.DOI == "" {
		return fmt.Errorf("article has no DOI, refusing to save")
	}

	res, err := s.client.Index(s.indexName).Id(art.DOI).Document(art).Do(ctx)
	if err != nil {
		return fmt.Errorf("save article %s: %w", art.DOI, err)
	}

	slog.Debug("article saved", "doi", art.DOI, "index", s.indexName, "result", res.Result)
	return nil
}

func (s *ArticleStore) Exists(ctx context.Context, doi string) (bool, error) {
	exists, err := s.client.Core.Exists(s.indexName, doi).Do(ctx)
	if err != nil {
		return false, fmt.Errorf("check article %s: %w", doi, err)
	}
	return exists, nil
}

func (s *ArticleStore) MarkFullText(ctx context.Context, doi string) error {
	_, err := s.client.Update(s.recordIndex, doi).
		Doc(map[string]bool{"hasFullText": true}).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("mark full text on %s: %w", doi, err)
	}
	return nil
}

var _ storage.ArticleStore = (*ArticleStore)(nil)
