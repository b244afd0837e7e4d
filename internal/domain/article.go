package domain

import "time"

// Article is the full text scraped from a publisher page, keyed by the
// same DOI as its bibliographic Record.
type Article struct {
	DOI        string    `json:"doi"`
	Title      string    `json:"title"`
	Abstract   string    `json:"abstract,omitempty"`
	Authors    []string  `json:"authors,omitempty"`
	FullText   string    `json:"fulltext"`
	References string    `json:"references,omitempty"`
	PubYear    int       `json:"pubYear,omitempty"`
	Conclusion string    `json:"conclusion,omitempty"`
	Methods    string    `json:"methods,omitempty"`
	SourceURL  string    `json:"sourceUrl"`
	ScrapedAt  time.Time `json:"scrapedAt"`
}
