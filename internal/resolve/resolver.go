// Package resolve turns persistent identifiers into publisher content
// locations by following the registry's redirect chain.
package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sagepublishing/bds-scraping/internal/apperr"
)

const (
	DefaultBaseURL = "https://doi.org"

	defaultTimeout = 30 * time.Second
)

type Config struct {
	BaseURL   string
	UserAgent string
	From      string
	Timeout   time.Duration
}

type Resolver struct {
	http *http.Client
	cfg  Config
}

func New(cfg Config) *Resolver {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Resolver{
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}
}

// Resolve follows redirects from the identifier endpoint and returns
// the terminal URL. A response that involved no redirect at all means
// the identifier does not reach publisher content, reported as a
// *apperr.NoRedirectError.
func (r *Resolver) Resolve(ctx context.Context, doi string) (string, error) {
	endpoint := r.cfg.BaseURL + "/" + doi

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if r.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", r.cfg.UserAgent)
	}
	if r.cfg.From != "" {
		req.Header.Set("From", r.cfg.From)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", doi, err)
	}
	defer resp.Body.Close()

	// The final request's Response field points back along the
	// redirect chain; nil means the first response was terminal.
	if resp.Request.Response == nil {
		return "", apperr.NewNoRedirect(doi)
	}

	hops := 0
	for prev := resp.Request.Response; prev != nil; prev = prev.Request.Response {
		hops++
	}

	finalURL := resp.Request.URL.String()
	slog.Debug("doi resolved", "doi", doi, "url", finalURL, "hops", hops, "status", resp.StatusCode)
	return finalURL, nil
}
