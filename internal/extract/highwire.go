package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sagepublishing/bds-scraping/internal/domain"
)

// Highwire parses article pages served by Highwire-hosted journal
// sites. Selectors target the citation markup that platform emits.
type Highwire struct {
	client *http.Client
	opts   ClientOptions
}

func NewHighwire(opts ClientOptions) *Highwire {
	return &Highwire{
		client: opts.httpClient(),
		opts:   opts,
	}
}

func (h *Highwire) Name() string { return "highwire" }

// Extract fetches the page and assembles an article field by field.
// Title and full text are required; the rest degrade to empty values
// with a log line so one odd page does not abort a drain.
func (h *Highwire) Extract(ctx context.Context, pageURL string) (domain.Article, error) {
	doc, err := h.fetchDocument(ctx, pageURL)
	if err != nil {
		return domain.Article{}, err
	}

	title := strings.TrimSpace(doc.Find("h1.highwire-cite-title").First().Text())
	if title == "" {
		return domain.Article{}, fmt.Errorf("page has no citation title: %s", pageURL)
	}

	fulltext := strings.TrimSpace(doc.Find("div.fulltext-view").First().Text())
	if fulltext == "" {
		return domain.Article{}, fmt.Errorf("page has no full-text container: %s", pageURL)
	}

	art := domain.Article{
		Title:      title,
		FullText:   fulltext,
		Abstract:   sectionText(doc, "div.section.abstract", "Abstract"),
		Conclusion: sectionText(doc, "div.section.conclusions", "Conclusion"),
		PubYear:    h.parsePubYear(doc, pageURL),
		Authors:    h.parseAuthors(doc),
		SourceURL:  pageURL,
		ScrapedAt:  time.Now().UTC(),
	}
	return art, nil
}

func (h *Highwire) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if h.opts.UserAgent != "" {
		req.Header.Set("User-Agent", h.opts.UserAgent)
	}
	if h.opts.From != "" {
		req.Header.Set("From", h.opts.From)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("publisher returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// sectionText grabs a uniquely-classed section and strips its leading
// boilerplate label.
func sectionText(doc *goquery.Document, selector, label string) string {
	text := doc.Find(selector).First().Text()
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), label))
	return text
}

// parsePubYear takes the trailing whitespace-delimited token of the
// citation metadata span.
func (h *Highwire) parsePubYear(doc *goquery.Document, pageURL string) int {
	meta := strings.TrimSpace(doc.Find("span.highwire-cite-metadata").First().Text())
	if meta == "" {
		slog.Debug("citation metadata absent", "url", pageURL)
		return 0
	}
	fields := strings.Fields(meta)
	year, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		slog.Warn("citation metadata has no trailing year", "url", pageURL, "token", fields[len(fields)-1])
		return 0
	}
	return year
}

func (h *Highwire) parseAuthors(doc *goquery.Document) []string {
	var authors []string
	doc.Find("div.highwire-cite-authors span.highwire-citation-author").Each(func(_ int, sel *goquery.Selection) {
		given := strings.TrimSpace(sel.Find("span.nlm-given-names").First().Text())
		family := strings.TrimSpace(sel.Find("span.nlm-surname").First().Text())
		name := strings.TrimSpace(given + " " + family)
		if name != "" {
			authors = append(authors, name)
		}
	})
	return authors
}

var _ Extractor = (*Highwire)(nil)
