// Package extract parses publisher HTML pages into scraped articles.
// Each publisher platform gets its own variant; a registry routes a
// subscription key to the variant that understands its pages.
package extract

import (
	"context"
	"net/http"
	"time"

	"github.com/sagepublishing/bds-scraping/internal/apperr"
	"github.com/sagepublishing/bds-scraping/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Extractor parses one publisher site's HTML structure.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, pageURL string) (domain.Article, error)
}

// Registry maps subscription keys to extractor variants. Unregistered
// keys get a typed unsupported-content error instead of a silent
// negative.
type Registry struct {
	byISSN map[string]Extractor
}

func NewRegistry() *Registry {
	return &Registry{byISSN: make(map[string]Extractor)}
}

func (r *Registry) Register(issn string, ex Extractor) {
	r.byISSN[issn] = ex
}

func (r *Registry) For(issn string) (Extractor, error) {
	ex, ok := r.byISSN[issn]
	if !ok {
		return nil, apperr.NewUnsupportedContent(issn)
	}
	return ex, nil
}

// ClientOptions carries the outbound HTTP identity shared by all
// variants.
type ClientOptions struct {
	UserAgent string
	From      string
	Timeout   time.Duration
}

func (o ClientOptions) httpClient() *http.Client {
	timeout := o.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
