package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagepublishing/bds-scraping/internal/crossref"
	"github.com/sagepublishing/bds-scraping/internal/domain"
	"github.com/sagepublishing/bds-scraping/internal/storage/inmem"
)

const testISSN = "2053-9517"

// fakeWorksClient serves a fixed sequence of pages keyed by cursor
// token and records every cursor it was asked for.
type fakeWorksClient struct {
	pages   map[string]crossref.Page
	cursors []string
}

func (f *fakeWorksClient) Works(ctx context.Context, issn, cursor string) (crossref.Page, error) {
	f.cursors = append(f.cursors, cursor)
	page, ok := f.pages[cursor]
	if !ok {
		return crossref.Page{}, fmt.Errorf("unexpected cursor %q", cursor)
	}
	return page, nil
}

func item(t *testing.T, doi string) crossref.Item {
	t.Helper()
	var it crossref.Item
	raw := fmt.Sprintf(`{"DOI": %q, "title": ["Article %s"]}`, doi, doi)
	require.NoError(t, json.Unmarshal([]byte(raw), &it))
	return it
}

func newHarness(t *testing.T, client *fakeWorksClient) (*Harvester, *inmem.CursorStore, *inmem.RecordIndexer, *inmem.Queue) {
	t.Helper()
	cursors := inmem.NewCursorStore()
	records := inmem.NewRecordIndexer()
	queue := inmem.NewQueue()
	return New(client, cursors, records, queue), cursors, records, queue
}

func TestHarvester_Run_PagesToExhaustion(t *testing.T) {
	// Arrange: two full pages, then an empty terminal page
	client := &fakeWorksClient{pages: map[string]crossref.Page{
		domain.BeginCursor: {Items: []crossref.Item{item(t, "10.1/a"), item(t, "10.1/b")}, NextCursor: "tok-1"},
		"tok-1":            {Items: []crossref.Item{item(t, "10.1/c")}, NextCursor: "tok-2"},
		"tok-2":            {Items: nil, NextCursor: "tok-dead"},
	}}
	h, cursors, records, queue := newHarness(t, client)
	cursors.Seed(testISSN, domain.BeginCursor)

	// Act
	stats, err := h.Run(context.Background(), testISSN)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Pages)
	assert.Equal(t, 3, stats.Records)
	assert.Equal(t, 3, stats.Enqueued)
	assert.Equal(t, 3, records.Len())
	assert.Equal(t, 3, queue.Len())

	// The cursor that fetched each non-empty page is stored after the
	// page is ingested, so the final stored cursor points at the last
	// page that held items. Tokens that only ever produced the empty
	// terminal page are never stored.
	history := cursors.History(testISSN)
	require.Len(t, history, 3) // seed + two ingested pages
	assert.Equal(t, domain.BeginCursor, history[1].Token)
	assert.Equal(t, "tok-1", history[2].Token)
	for _, c := range history {
		assert.NotEqual(t, "tok-2", c.Token)
		assert.NotEqual(t, "tok-dead", c.Token)
	}
}

func TestHarvester_Run_ResumesFromStoredCursor(t *testing.T) {
	client := &fakeWorksClient{pages: map[string]crossref.Page{
		"tok-7": {Items: []crossref.Item{item(t, "10.1/d")}, NextCursor: "tok-8"},
		"tok-8": {Items: nil, NextCursor: ""},
	}}
	h, cursors, _, _ := newHarness(t, client)
	cursors.Seed(testISSN, "tok-7")

	stats, err := h.Run(context.Background(), testISSN)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pages)
	assert.Equal(t, []string{"tok-7", "tok-8"}, client.cursors)
}

func TestHarvester_Run_LatestCursorWinsAcrossSubscriptions(t *testing.T) {
	client := &fakeWorksClient{pages: map[string]crossref.Page{
		"tok-new": {Items: nil, NextCursor: ""},
	}}
	h, cursors, _, _ := newHarness(t, client)
	cursors.Seed("1932-6203", "tok-other")
	cursors.Seed(testISSN, "tok-old")
	cursors.Seed(testISSN, "tok-new")

	_, err := h.Run(context.Background(), testISSN)

	require.NoError(t, err)
	assert.Equal(t, []string{"tok-new"}, client.cursors)
}

func TestHarvester_Run_EmptyCursorStoreIsFatal(t *testing.T) {
	// A wholly empty cursor store signals a misconfigured backend, not
	// a fresh subscription.
	client := &fakeWorksClient{pages: map[string]crossref.Page{}}
	h, _, _, _ := newHarness(t, client)

	_, err := h.Run(context.Background(), testISSN)

	require.Error(t, err)
	assert.Empty(t, client.cursors)
}

func TestHarvester_Run_UnknownSubscriptionStartsAtBegin(t *testing.T) {
	client := &fakeWorksClient{pages: map[string]crossref.Page{
		domain.BeginCursor: {Items: nil, NextCursor: ""},
	}}
	h, cursors, _, _ := newHarness(t, client)
	cursors.Seed("1932-6203", "tok-other")

	stats, err := h.Run(context.Background(), testISSN)

	require.NoError(t, err)
	assert.Equal(t, 0, stats.Pages)
	assert.Equal(t, []string{domain.BeginCursor}, client.cursors)
}

func TestHarvester_Run_FirstHarvestForSubscription(t *testing.T) {
	// No cursor for this subscription yet: start at the begin
	// sentinel, ingest one page of two items, stop on the empty page.
	client := &fakeWorksClient{pages: map[string]crossref.Page{
		domain.BeginCursor: {Items: []crossref.Item{item(t, "10.1/x"), item(t, "10.1/y")}, NextCursor: "tok-1"},
		"tok-1":            {Items: nil, NextCursor: ""},
	}}
	h, cursors, records, queue := newHarness(t, client)
	cursors.Seed("1932-6203", "tok-other")

	stats, err := h.Run(context.Background(), testISSN)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pages)
	assert.Equal(t, 2, records.Len())
	assert.Equal(t, 2, queue.Len())

	history := cursors.History(testISSN)
	require.Len(t, history, 1)
	assert.Equal(t, domain.BeginCursor, history[0].Token,
		"stored cursor is the one that fetched the last non-empty page")
}

func TestHarvester_Run_ReingestOverwritesByDOI(t *testing.T) {
	client := &fakeWorksClient{pages: map[string]crossref.Page{
		domain.BeginCursor: {Items: []crossref.Item{item(t, "10.1/a"), item(t, "10.1/a")}, NextCursor: "tok-1"},
		"tok-1":            {Items: nil, NextCursor: ""},
	}}
	h, cursors, records, queue := newHarness(t, client)
	cursors.Seed(testISSN, domain.BeginCursor)

	_, err := h.Run(context.Background(), testISSN)

	require.NoError(t, err)
	assert.Equal(t, 1, records.Len())
	assert.Equal(t, 1, queue.Len(), "queue holds one entry per DOI")
}

func TestHarvester_Run_SkipsItemsWithoutDOI(t *testing.T) {
	var noDOI crossref.Item
	require.NoError(t, json.Unmarshal([]byte(`{"title": ["orphan"]}`), &noDOI))

	client := &fakeWorksClient{pages: map[string]crossref.Page{
		domain.BeginCursor: {Items: []crossref.Item{noDOI, item(t, "10.1/ok")}, NextCursor: "tok-1"},
		"tok-1":            {Items: nil, NextCursor: ""},
	}}
	h, cursors, records, _ := newHarness(t, client)
	cursors.Seed(testISSN, domain.BeginCursor)

	stats, err := h.Run(context.Background(), testISSN)

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Records)
	_, ok := records.Get("10.1/ok")
	assert.True(t, ok)
}
