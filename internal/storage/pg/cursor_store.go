package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagepublishing/bds-scraping/internal/apperr"
	"github.com/sagepublishing/bds-scraping/internal/storage"
)

type CursorStore struct {
	db *pgxpool.Pool
}

func NewCursorStore(pool *ConnectionPool) *CursorStore {
	return &CursorStore{db: pool.GetConn()}
}

func (s *CursorStore) Latest(ctx context.Context, issn string) (string, bool, error) {
	// A missing table means the backend was never set up, which is a
	// different condition from "no cursor stored for this key yet".
	var present bool
	err := s.db.QueryRow(ctx, `SELECT to_regclass('harvest_cursors') IS NOT NULL`).Scan(&present)
	if err != nil {
		return "", false, fmt.Errorf("check cursor table: %w", err)
	}
	if !present {
		return "", false, apperr.NewEmptyIndex("harvest_cursors")
	}

	var token string
	err = s.db.QueryRow(ctx, `
		SELECT cursor FROM harvest_cursors
		WHERE issn = $1
		ORDER BY created_at DESC
		LIMIT 1`, issn).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query latest cursor: %w", err)
	}
	return token, true, nil
}

func (s *CursorStore) Save(ctx context.Context, issn, token string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO harvest_cursors (issn, cursor)
		VALUES ($1, $2)`, issn, token)
	if err != nil {
		return fmt.Errorf("store cursor: %w", err)
	}
	return nil
}

var _ storage.CursorStore = (*CursorStore)(nil)
