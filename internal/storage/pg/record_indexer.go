package pg

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagepublishing/bds-scraping/internal/domain"
	"github.com/sagepublishing/bds-scraping/internal/storage"
)

type RecordIndexer struct {
	db *pgxpool.Pool
}

func NewRecordIndexer(pool *ConnectionPool) *RecordIndexer {
	return &RecordIndexer{db: pool.GetConn()}
}

const upsertRecord = `
	INSERT INTO bib_records
		(doi, url, container_title, title, authors, issn, has_fulltext, published_at, ingested_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (doi) DO UPDATE SET
		url = EXCLUDED.url,
		container_title = EXCLUDED.container_title,
		title = EXCLUDED.title,
		authors = EXCLUDED.authors,
		issn = EXCLUDED.issn,
		has_fulltext = EXCLUDED.has_fulltext,
		published_at = EXCLUDED.published_at,
		ingested_at = EXCLUDED.ingested_at`

func (s *RecordIndexer) Index(ctx context.Context, rec domain.Record) error {
	if rec.DOI == "" {
		return fmt.Errorf("record has no DOI, refusing to index")
	}

	args, err := recordArgs(rec)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, upsertRecord, args...); err != nil {
		return fmt.Errorf("upsert record %s: %w", rec.DOI, err)
	}
	return nil
}

func (s *RecordIndexer) IndexBatch(ctx context.Context, recs []domain.Record) error {
	if len(recs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, rec := range recs {
		if rec.DOI == "" {
			continue
		}
		args, err := recordArgs(rec)
		if err != nil {
			return err
		}
		batch.Queue(upsertRecord, args...)
	}

	br := s.db.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch upsert records: %w", err)
		}
	}
	return nil
}

func recordArgs(rec domain.Record) ([]any, error) {
	authorsJSON, err := json.Marshal(rec.Authors)
	if err != nil {
		return nil, fmt.Errorf("marshal authors for %s: %w", rec.DOI, err)
	}
	return []any{
		rec.DOI,
		rec.URL,
		rec.ContainerTitle,
		rec.Title,
		authorsJSON,
		rec.ISSN,
		rec.HasFullText,
		rec.PublishedAt,
		rec.IngestedAt,
	}, nil
}

var _ storage.RecordIndexer = (*RecordIndexer)(nil)
