package es

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagepublishing/bds-scraping/internal/domain"
	pkgtesting "github.com/sagepublishing/bds-scraping/pkg/testing"
)

const testISSN = "2053-9517"

func newTestStores(t *testing.T) *Stores {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	es := pkgtesting.NewESContainer(ctx, t)

	stores, err := NewStores(ctx, ClientConfig{
		Addresses:    []string{es.Address},
		RecordIndex:  "crossref-md-test",
		CursorIndex:  "issn-cursors-test",
		QueueIndex:   "doi-queue-test",
		ArticleIndex: "scraped-articles-test",
	})
	require.NoError(t, err)
	return stores
}

// waitVisible polls until an index write becomes searchable; index
// refresh runs on its own interval.
func waitVisible(t *testing.T, cond func() bool) {
	t.Helper()
	assert.Eventually(t, cond, 10*time.Second, 200*time.Millisecond)
}

func TestStores_FullPipelineRoundTrip(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	// Cursors: fresh index, nothing stored for the key yet.
	_, ok, err := stores.Cursors.Latest(ctx, testISSN)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, stores.Cursors.Save(ctx, testISSN, "tok-1"))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, stores.Cursors.Save(ctx, testISSN, "tok-2"))
	require.NoError(t, stores.Cursors.Save(ctx, "1932-6203", "tok-other"))

	waitVisible(t, func() bool {
		token, ok, err := stores.Cursors.Latest(ctx, testISSN)
		return err == nil && ok && token == "tok-2"
	})

	// Records: identifier-keyed, so re-indexing overwrites.
	rec := domain.Record{
		DOI:        "10.1/es-1",
		Title:      "First Title",
		ISSN:       []string{testISSN},
		Authors:    []domain.Author{{Given: "Ada", Family: "Lovelace"}},
		IngestedAt: time.Now().UTC(),
	}
	require.NoError(t, stores.Records.Index(ctx, rec))
	rec.Title = "Corrected Title"
	require.NoError(t, stores.Records.Index(ctx, rec))

	// Queue: one live entry per identifier.
	require.NoError(t, stores.Queue.Enqueue(ctx, testISSN, "10.1/es-1"))
	require.NoError(t, stores.Queue.Enqueue(ctx, testISSN, "10.1/es-1"))
	require.NoError(t, stores.Queue.Enqueue(ctx, testISSN, "10.1/es-2"))

	waitVisible(t, func() bool {
		dois, err := stores.Queue.Pending(ctx, testISSN)
		return err == nil && len(dois) == 2
	})

	// Articles: persist, then the queue entry goes away.
	art := domain.Article{
		DOI:       "10.1/es-1",
		Title:     "Corrected Title",
		FullText:  "The whole body.",
		PubYear:   2024,
		SourceURL: "https://pub.example/es-1",
		ScrapedAt: time.Now().UTC(),
	}
	require.NoError(t, stores.Articles.Save(ctx, art))

	done, err := stores.Articles.Exists(ctx, "10.1/es-1")
	require.NoError(t, err)
	assert.True(t, done)

	require.NoError(t, stores.Articles.MarkFullText(ctx, "10.1/es-1"))

	require.NoError(t, stores.Queue.Dequeue(ctx, "10.1/es-1"))
	require.NoError(t, stores.Queue.Dequeue(ctx, "10.1/es-1"), "dequeue is idempotent")

	waitVisible(t, func() bool {
		dois, err := stores.Queue.Pending(ctx, testISSN)
		return err == nil && len(dois) == 1 && dois[0] == "10.1/es-2"
	})
}

func TestStores_IndexBatch(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	recs := []domain.Record{
		{DOI: "10.1/batch-a", Title: "A", IngestedAt: time.Now().UTC()},
		{DOI: "10.1/batch-b", Title: "B", IngestedAt: time.Now().UTC()},
	}
	require.NoError(t, stores.Records.IndexBatch(ctx, recs))
}

func TestCursorStore_MissingIndexIsEmptyIndexError(t *testing.T) {
	stores := newTestStores(t)
	ctx := context.Background()

	// Point at an index nothing ever created.
	ghost := NewCursorStore(stores.Cursors.client, "never-created-cursors")

	_, _, err := ghost.Latest(ctx, testISSN)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "never-created-cursors")
}
