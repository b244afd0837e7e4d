package crossref

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/sagepublishing/bds-scraping/internal/domain"
)

// Date fields tried in priority order when inferring the earliest
// publication date.
var pubDateKeys = []string{"published-online", "published-print", "issued", "deposited"}

// MapRecord normalizes one raw works item into a Record. Every field is
// extracted independently: an absent field yields the zero value with a
// debug log, a malformed one yields the zero value with a warn log.
// Nothing aborts the record.
func MapRecord(item Item) domain.Record {
	rec := domain.Record{
		DOI:            stringField(item, "DOI"),
		URL:            stringField(item, "URL"),
		ContainerTitle: firstString(item, "container-title"),
		Title:          firstString(item, "title"),
		ISSN:           stringList(item, "ISSN"),
		HasFullText:    boolField(item, "fulltext"),
		Authors:        authorList(item),
		PublishedAt:    inferPublishedAt(item),
		IngestedAt:     time.Now().UTC(),
	}
	return rec
}

func stringField(item Item, key string) string {
	raw, ok := item[key]
	if !ok {
		slog.Debug("field absent", "field", key)
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		slog.Warn("field malformed", "field", key, "error", err)
		return ""
	}
	return s
}

// firstString handles fields the registry serves as a one-element
// array (title, container-title) but tolerates a bare string too.
func firstString(item Item, key string) string {
	raw, ok := item[key]
	if !ok {
		slog.Debug("field absent", "field", key)
		return ""
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return ""
		}
		return list[0]
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		slog.Warn("field malformed", "field", key, "error", err)
		return ""
	}
	return s
}

func stringList(item Item, key string) []string {
	raw, ok := item[key]
	if !ok {
		slog.Debug("field absent", "field", key)
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		slog.Warn("field malformed", "field", key, "error", err)
		return nil
	}
	return list
}

func boolField(item Item, key string) bool {
	raw, ok := item[key]
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		slog.Warn("field malformed", "field", key, "error", err)
		return false
	}
	return b
}

// authorList unpacks the author name pairs. Any malformed entry nulls
// the whole field; partial author data is worse than none.
func authorList(item Item) []domain.Author {
	raw, ok := item["author"]
	if !ok {
		slog.Debug("field absent", "field", "author")
		return nil
	}
	var authors []domain.Author
	if err := json.Unmarshal(raw, &authors); err != nil {
		slog.Warn("field malformed", "field", "author", "error", err)
		return nil
	}
	return authors
}

type dateParts struct {
	DateParts [][]int `json:"date-parts"`
}

// inferPublishedAt walks the candidate date fields in priority order
// and returns the first one carrying a full (year, month, day) triple.
// A partial triple is malformed, not an error: the date is dropped and
// the record survives.
func inferPublishedAt(item Item) *time.Time {
	for _, key := range pubDateKeys {
		raw, ok := item[key]
		if !ok {
			continue
		}
		var dp dateParts
		if err := json.Unmarshal(raw, &dp); err != nil {
			slog.Warn("date field malformed", "field", key, "error", err)
			return nil
		}
		if len(dp.DateParts) == 0 {
			slog.Warn("date field has no parts", "field", key)
			return nil
		}
		parts := dp.DateParts[0]
		if len(parts) < 3 {
			slog.Warn("date field has partial parts, dropping date", "field", key, "parts", parts)
			return nil
		}
		t := time.Date(parts[0], time.Month(parts[1]), parts[2], 0, 0, 0, 0, time.UTC)
		return &t
	}
	slog.Debug("no publication date field present")
	return nil
}
