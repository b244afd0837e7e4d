package pg

import (
	"context"
	"fmt"
)

// Stores bundles the Postgres-backed implementations sharing one pool.
type Stores struct {
	Cursors  *CursorStore
	Records  *RecordIndexer
	Queue    *Queue
	Articles *ArticleStore

	pool *ConnectionPool
}

func NewStores(ctx context.Context, cfg PoolConfig) (*Stores, error) {
	pool, err := NewConnectionPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
	}

	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &Stores{
		Cursors:  NewCursorStore(pool),
		Records:  NewRecordIndexer(pool),
		Queue:    NewQueue(pool),
		Articles: NewArticleStore(pool),
		pool:     pool,
	}, nil
}

func (s *Stores) Close() {
	s.pool.Close()
}
