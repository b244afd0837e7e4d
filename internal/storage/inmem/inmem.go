// Package inmem provides in-memory implementations of the storage
// contracts, used by unit tests and local dry runs.
package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sagepublishing/bds-scraping/internal/apperr"
	"github.com/sagepublishing/bds-scraping/internal/domain"
	"github.com/sagepublishing/bds-scraping/internal/storage"
)

type CursorStore struct {
	mu      sync.RWMutex
	cursors []domain.Cursor
}

func NewCursorStore() *CursorStore {
	return &CursorStore{}
}

func (s *CursorStore) Latest(ctx context.Context, issn string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.cursors) == 0 {
		return "", false, apperr.NewEmptyIndex("cursors")
	}
	for i := len(s.cursors) - 1; i >= 0; i-- {
		if s.cursors[i].ISSN == issn {
			return s.cursors[i].Token, true, nil
		}
	}
	return "", false, nil
}

func (s *CursorStore) Save(ctx context.Context, issn, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cursors = append(s.cursors, domain.Cursor{
		ISSN:      issn,
		Token:     token,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

// History returns every cursor stored for the subscription, oldest
// first.
func (s *CursorStore) History(issn string) []domain.Cursor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Cursor
	for _, c := range s.cursors {
		if c.ISSN == issn {
			out = append(out, c)
		}
	}
	return out
}

// Seed pre-populates the store so Latest does not report an empty
// index.
func (s *CursorStore) Seed(issn, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cursors = append(s.cursors, domain.Cursor{
		ISSN:      issn,
		Token:     token,
		Timestamp: time.Now().UTC(),
	})
}

type RecordIndexer struct {
	mu      sync.RWMutex
	records map[string]domain.Record
}

func NewRecordIndexer() *RecordIndexer {
	return &RecordIndexer{records: make(map[string]domain.Record)}
}

func (s *RecordIndexer) Index(ctx context.Context, rec domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.DOI] = rec
	return nil
}

func (s *RecordIndexer) IndexBatch(ctx context.Context, recs []domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range recs {
		s.records[rec.DOI] = rec
	}
	return nil
}

func (s *RecordIndexer) Get(doi string) (domain.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[doi]
	return rec, ok
}

func (s *RecordIndexer) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

type Queue struct {
	mu      sync.RWMutex
	entries map[string]domain.QueueEntry
}

func NewQueue() *Queue {
	return &Queue{entries: make(map[string]domain.QueueEntry)}
}

func (q *Queue) Enqueue(ctx context.Context, issn, doi string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.entries[doi]; ok {
		return nil
	}
	q.entries[doi] = domain.QueueEntry{ISSN: issn, DOI: doi, EnqueuedAt: time.Now().UTC()}
	return nil
}

func (q *Queue) Pending(ctx context.Context, issn string) ([]string, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var entries []domain.QueueEntry
	for _, e := range q.entries {
		if e.ISSN == issn {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].EnqueuedAt.Before(entries[j].EnqueuedAt)
	})

	dois := make([]string, 0, len(entries))
	for _, e := range entries {
		dois = append(dois, e.DOI)
	}
	return dois, nil
}

func (q *Queue) Dequeue(ctx context.Context, doi string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.entries, doi)
	return nil
}

func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return len(q.entries)
}

type ArticleStore struct {
	mu       sync.RWMutex
	articles map[string]domain.Article
	records  *RecordIndexer
}

// NewArticleStore links the article store to a record indexer so
// MarkFullText can flip the record flag, mirroring the real backends.
func NewArticleStore(records *RecordIndexer) *ArticleStore {
	return &ArticleStore{
		articles: make(map[string]domain.Article),
		records:  records,
	}
}

func (s *ArticleStore) Save(ctx context.Context, art domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.articles[art.DOI] = art
	return nil
}

func (s *ArticleStore) Exists(ctx context.Context, doi string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.articles[doi]
	return ok, nil
}

func (s *ArticleStore) MarkFullText(ctx context.Context, doi string) error {
	if s.records == nil {
		return nil
	}
	s.records.mu.Lock()
	defer s.records.mu.Unlock()

	rec, ok := s.records.records[doi]
	if !ok {
		return nil
	}
	rec.HasFullText = true
	s.records.records[doi] = rec
	return nil
}

func (s *ArticleStore) Get(doi string) (domain.Article, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	art, ok := s.articles[doi]
	return art, ok
}

var (
	_ storage.CursorStore   = (*CursorStore)(nil)
	_ storage.RecordIndexer = (*RecordIndexer)(nil)
	_ storage.Queue         = (*Queue)(nil)
	_ storage.ArticleStore  = (*ArticleStore)(nil)
)
