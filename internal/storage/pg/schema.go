package pg

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS harvest_cursors (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		issn TEXT NOT NULL,
		cursor TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS harvest_cursors_issn_idx
		ON harvest_cursors (issn, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS bib_records (
		doi TEXT PRIMARY KEY,
		url TEXT,
		container_title TEXT,
		title TEXT,
		authors JSONB,
		issn TEXT[],
		has_fulltext BOOLEAN NOT NULL DEFAULT FALSE,
		published_at DATE,
		ingested_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS scrape_queue (
		doi TEXT PRIMARY KEY,
		issn TEXT NOT NULL,
		enqueued_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS scrape_queue_issn_idx
		ON scrape_queue (issn, enqueued_at)`,
	`CREATE TABLE IF NOT EXISTS scraped_articles (
		doi TEXT PRIMARY KEY,
		title TEXT,
		abstract TEXT,
		authors JSONB,
		fulltext TEXT,
		refs TEXT,
		pub_year INT,
		conclusion TEXT,
		methods TEXT,
		source_url TEXT,
		scraped_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates the pipeline tables when they are missing.
func EnsureSchema(ctx context.Context, pool *ConnectionPool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.GetConn().Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
