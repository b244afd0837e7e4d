package pg

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagepublishing/bds-scraping/internal/domain"
	"github.com/sagepublishing/bds-scraping/internal/storage"
)

type ArticleStore struct {
	db *pgxpool.Pool
}

func NewArticleStore(pool *ConnectionPool) *ArticleStore {
	return &ArticleStore{db: pool.GetConn()}
}

func (s *ArticleStore) Save(ctx context.Context, art domain.Article) error {
	if art.DOI == "" {
		return fmt.Errorf("article has no DOI, refusing to save")
	}

	authorsJSON, err := json.Marshal(art.Authors)
	if err != nil {
		return fmt.Errorf("marshal authors for %s: %w", art.DOI, err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO scraped_articles
			(doi, title, abstract, authors, fulltext, refs, pub_year, conclusion, methods, source_url, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (doi) DO UPDATE SET
			title = EXCLUDED.title,
			abstract = EXCLUDED.abstract,
			authors = EXCLUDED.authors,
			fulltext = EXCLUDED.fulltext,
			refs = EXCLUDED.refs,
			pub_year = EXCLUDED.pub_year,
			conclusion = EXCLUDED.conclusion,
			methods = EXCLUDED.methods,
			source_url = EXCLUDED.source_url,
			scraped_at = EXCLUDED.scraped_at`,
		art.DOI, art.Title, art.Abstract, authorsJSON, art.FullText, art.References,
		art.PubYear, art.Conclusion, art.Methods, art.SourceURL, art.ScrapedAt)
	if err != nil {
		return fmt.Errorf("save article %s: %w", art.DOI, err)
	}
	return nil
}

func (s *ArticleStore) Exists(ctx context.Context, doi string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM scraped_articles WHERE doi = $1)`, doi).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check article %s: %w", doi, err)
	}
	return exists, nil
}

func (s *ArticleStore) MarkFullText(ctx context.Context, doi string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE bib_records SET has_fulltext = TRUE WHERE doi = $1`, doi)
	if err != nil {
		return fmt.Errorf("mark full text on %s: %w", doi, err)
	}
	return nil
}

var _ storage.ArticleStore = (*ArticleStore)(nil)
