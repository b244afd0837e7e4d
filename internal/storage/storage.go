// Package storage defines the document-store contracts the pipeline
// depends on. Implementations live in the es, pg and inmem
// subpackages; the factory package picks one from the environment.
package storage

import (
	"context"

	"github.com/sagepublishing/bds-scraping/internal/domain"
)

// CursorStore persists pagination cursors per subscription so harvest
// runs can resume where the previous one stopped.
type CursorStore interface {
	// Latest returns the most recent token stored for the
	// subscription. ok is false when the subscription has no cursor
	// yet. A *apperr.EmptyIndexError is returned when the backing
	// index has never been populated at all.
	Latest(ctx context.Context, issn string) (token string, ok bool, err error)

	// Save appends a cursor record with the current timestamp.
	// History is retained, never overwritten.
	Save(ctx context.Context, issn, token string) error
}

// RecordIndexer upserts bibliographic records keyed by DOI.
type RecordIndexer interface {
	Index(ctx context.Context, rec domain.Record) error
	IndexBatch(ctx context.Context, recs []domain.Record) error
}

// Queue is the durable scrape work-queue. Entries are keyed by DOI, so
// repeated enqueues collapse into a single live entry.
type Queue interface {
	Enqueue(ctx context.Context, issn, doi string) error
	Pending(ctx context.Context, issn string) ([]string, error)
	// Dequeue removes the entry for the DOI. Removing a missing
	// entry is not an error.
	Dequeue(ctx context.Context, doi string) error
}

// ArticleStore persists scraped articles keyed by DOI, shares that key
// with the record index, and answers the already-scraped pre-check.
type ArticleStore interface {
	Save(ctx context.Context, art domain.Article) error
	Exists(ctx context.Context, doi string) (bool, error)
	// MarkFullText flips the full-text flag on the bibliographic
	// record once its article has been persisted.
	MarkFullText(ctx context.Context, doi string) error
}

type Type string

const (
	ES Type = "es"
	PG Type = "pg"
)

type StorageError string

const (
	ErrUnsupportedStorage StorageError = "unsupported storage type: %s"
)

func (e StorageError) Error() string {
	return string(e)
}
