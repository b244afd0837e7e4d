package domain

import (
	"strings"
	"time"
)

// BeginCursor is the registry API sentinel that starts paging from the
// beginning of a subscription's works.
const BeginCursor = "*"

type Author struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

// Record is the normalized bibliographic metadata for one article.
// The DOI is the storage key everywhere, so re-ingesting a record
// overwrites rather than duplicates.
type Record struct {
	DOI            string     `json:"doi"`
	URL            string     `json:"url,omitempty"`
	ContainerTitle string     `json:"containerTitle,omitempty"`
	Title          string     `json:"title,omitempty"`
	Authors        []Author   `json:"authors,omitempty"`
	ISSN           []string   `json:"issn,omitempty"`
	HasFullText    bool       `json:"hasFullText"`
	PublishedAt    *time.Time `json:"publishedAt,omitempty"`
	IngestedAt     time.Time  `json:"ingestedAt,omitempty"`
}

// DisplayAuthors joins the author list into a single human-readable
// string, "Given Family, Given Family".
func (r Record) DisplayAuthors() string {
	if len(r.Authors) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.Authors))
	for _, a := range r.Authors {
		parts = append(parts, strings.TrimSpace(a.Given+" "+a.Family))
	}
	return strings.Join(parts, ", ")
}

// Cursor is one stored resumption token for a subscription. Tokens are
// opaque and only meaningful together with their subscription key.
type Cursor struct {
	ISSN      string    `json:"issn"`
	Token     string    `json:"cursor"`
	Timestamp time.Time `json:"timestamp"`
}

// QueueEntry marks a DOI as awaiting full-text scraping.
type QueueEntry struct {
	ISSN       string    `json:"issn"`
	DOI        string    `json:"doi"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}
