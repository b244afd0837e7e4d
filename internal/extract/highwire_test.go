package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const highwirePage = `<!DOCTYPE html>
<html><body>
<div class="highwire-cite">
  <h1 class="highwire-cite-title">Seeing Like a Dataset</h1>
  <div class="highwire-cite-authors">
    <span class="highwire-citation-author">
      <span class="nlm-given-names">Ada</span> <span class="nlm-surname">Lovelace</span>
    </span>
    <span class="highwire-citation-author">
      <span class="nlm-given-names">Grace</span> <span class="nlm-surname">Hopper</span>
    </span>
  </div>
  <span class="highwire-cite-metadata">Big Data &amp; Society Vol 11 2024</span>
</div>
<div class="section abstract"><h2>Abstract</h2>
Counting things changes the things counted.</div>
<div class="fulltext-view">
  <p>Introduction paragraph of the article body.</p>
  <div class="section conclusions"><h2>Conclusion</h2>
We conclude that measurement is never neutral.</div>
</div>
</body></html>`

func serveHTML(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHighwire_Extract_FullPage(t *testing.T) {
	// Arrange
	srv := serveHTML(t, highwirePage)
	hw := NewHighwire(ClientOptions{UserAgent: "test-agent/0.1"})

	// Act
	art, err := hw.Extract(context.Background(), srv.URL+"/content/11/1/1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Seeing Like a Dataset", art.Title)
	assert.Contains(t, art.FullText, "Introduction paragraph of the article body.")
	assert.Equal(t, "Counting things changes the things counted.", art.Abstract)
	assert.Equal(t, "We conclude that measurement is never neutral.", art.Conclusion)
	assert.Equal(t, 2024, art.PubYear)
	assert.Equal(t, []string{"Ada Lovelace", "Grace Hopper"}, art.Authors)
	assert.Equal(t, srv.URL+"/content/11/1/1", art.SourceURL)
	assert.False(t, art.ScrapedAt.IsZero())
}

func TestHighwire_Extract_MissingTitleFails(t *testing.T) {
	srv := serveHTML(t, `<html><body><div class="fulltext-view">body</div></body></html>`)
	hw := NewHighwire(ClientOptions{})

	_, err := hw.Extract(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "citation title")
}

func TestHighwire_Extract_MissingFullTextFails(t *testing.T) {
	srv := serveHTML(t, `<html><body><h1 class="highwire-cite-title">Title Only</h1></body></html>`)
	hw := NewHighwire(ClientOptions{})

	_, err := hw.Extract(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "full-text")
}

func TestHighwire_Extract_OptionalSectionsDegrade(t *testing.T) {
	// No abstract, no conclusions, no metadata year, no authors: the
	// article still comes back with the required fields.
	srv := serveHTML(t, `<html><body>
		<h1 class="highwire-cite-title">Bare Bones</h1>
		<div class="fulltext-view">Just the body.</div>
	</body></html>`)
	hw := NewHighwire(ClientOptions{})

	art, err := hw.Extract(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "Bare Bones", art.Title)
	assert.Empty(t, art.Abstract)
	assert.Empty(t, art.Conclusion)
	assert.Zero(t, art.PubYear)
	assert.Empty(t, art.Authors)
}

func TestHighwire_Extract_Non200Fails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	hw := NewHighwire(ClientOptions{})

	_, err := hw.Extract(context.Background(), srv.URL)

	require.Error(t, err)
}
