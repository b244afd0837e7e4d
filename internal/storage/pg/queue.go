package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagepublishing/bds-scraping/internal/storage"
)

type Queue struct {
	db *pgxpool.Pool
}

func NewQueue(pool *ConnectionPool) *Queue {
	return &Queue{db: pool.GetConn()}
}

func (q *Queue) Enqueue(ctx context.Context, issn, doi string) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO scrape_queue (doi, issn)
		VALUES ($1, $2)
		ON CONFLICT (doi) DO NOTHING`, doi, issn)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", doi, err)
	}
	return nil
}

func (q *Queue) Pending(ctx context.Context, issn string) ([]string, error) {
	rows, err := q.db.Query(ctx, `
		SELECT doi FROM scrape_queue
		WHERE issn = $1
		ORDER BY enqueued_at`, issn)
	if err != nil {
		return nil, fmt.Errorf("list pending for %s: %w", issn, err)
	}
	defer rows.Close()

	var dois []string
	for rows.Next() {
		var doi string
		if err := rows.Scan(&doi); err != nil {
			return nil, fmt.Errorf("scan queue row: %w", err)
		}
		dois = append(dois, doi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queue rows: %w", err)
	}
	return dois, nil
}

func (q *Queue) Dequeue(ctx context.Context, doi string) error {
	_, err := q.db.Exec(ctx, `DELETE FROM scrape_queue WHERE doi = $1`, doi)
	if err != nil {
		return fmt.Errorf("dequeue %s: %w", doi, err)
	}
	return nil
}

var _ storage.Queue = (*Queue)(nil)
