// Package crossref talks to the Crossref registry API and normalizes
// its heterogeneous bibliographic records.
package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultBaseURL   = "https://api.crossref.org"
	DefaultUserAgent = "bds-scraping/1.0"
	DefaultFrom      = "ian@mulvany.net"

	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 4
)

type ClientConfig struct {
	BaseURL    string
	UserAgent  string
	From       string
	Timeout    time.Duration
	MaxRetries uint64
}

type Client struct {
	http *http.Client
	cfg  ClientConfig
}

// Item is one raw works record. Fields are decoded lazily because the
// field set varies by publisher.
type Item map[string]json.RawMessage

// Page is one page of a works listing.
type Page struct {
	Items      []Item
	NextCursor string
}

type worksResponse struct {
	Message struct {
		Items      []Item `json:"items"`
		NextCursor string `json:"next-cursor"`
	} `json:"message"`
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.From == "" {
		cfg.From = DefaultFrom
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	return &Client{
		http: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}
}

// Works fetches one page of the works listing for a subscription.
// Network errors and 5xx responses are retried with exponential
// backoff; other non-2xx responses fail immediately.
func (c *Client) Works(ctx context.Context, issn, cursor string) (Page, error) {
	endpoint := fmt.Sprintf("%s/journals/%s/works?cursor=%s",
		c.cfg.BaseURL, url.PathEscape(issn), url.QueryEscape(cursor))

	var page Page
	operation := func() error {
		p, err := c.fetchPage(ctx, endpoint)
		if err != nil {
			return err
		}
		page = p
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.cfg.MaxRetries), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return Page{}, fmt.Errorf("fetch works page for %s: %w", issn, err)
	}
	return page, nil
}

func (c *Client) fetchPage(ctx context.Context, endpoint string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Page{}, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("From", c.cfg.From)

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("registry request failed, will retry", "url", endpoint, "error", err)
		return Page{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		slog.Warn("registry returned server error, will retry", "url", endpoint, "status", resp.StatusCode)
		return Page{}, fmt.Errorf("registry returned %s", resp.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return Page{}, backoff.Permanent(fmt.Errorf("registry returned %s", resp.Status))
	}

	var decoded worksResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Page{}, backoff.Permanent(fmt.Errorf("decode works response: %w", err))
	}

	return Page{
		Items:      decoded.Message.Items,
		NextCursor: decoded.Message.NextCursor,
	}, nil
}
