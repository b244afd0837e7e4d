// Package scrape drains the work queue: resolve each waiting DOI,
// extract the publisher page, persist the article, and only then
// remove the queue entry.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sagepublishing/bds-scraping/internal/apperr"
	"github.com/sagepublishing/bds-scraping/internal/extract"
	"github.com/sagepublishing/bds-scraping/internal/storage"
)

// State tracks one DOI through the scrape pipeline.
type State string

const (
	StatePending     State = "pending"
	StateResolving   State = "resolving"
	StateExtracting  State = "extracting"
	StatePersisted   State = "persisted"
	StateDequeued    State = "dequeued"
	StateAlreadyDone State = "already_done"
	StateFailed      State = "failed"
)

// Resolver is the slice of the identifier resolver the orchestrator
// needs.
type Resolver interface {
	Resolve(ctx context.Context, doi string) (string, error)
}

const defaultWorkers = 4

type Config struct {
	Workers int
}

type Stats struct {
	Processed   int
	Scraped     int
	AlreadyDone int
	Failed      int
	Unsupported int
}

type Orchestrator struct {
	queue    storage.Queue
	articles storage.ArticleStore
	resolver Resolver
	registry *extract.Registry
	cfg      Config

	mu     sync.Mutex
	leases map[string]struct{}
	stats  Stats
}

func New(queue storage.Queue, articles storage.ArticleStore, resolver Resolver, registry *extract.Registry, cfg Config) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	return &Orchestrator{
		queue:    queue,
		articles: articles,
		resolver: resolver,
		registry: registry,
		cfg:      cfg,
		leases:   make(map[string]struct{}),
	}
}

// Drain processes every queued DOI for one subscription. Work fans out
// across a bounded worker group; a per-identifier lease keeps two
// workers off the same DOI. Failures stay in the queue for a later
// drain, so the pass itself only errors when listing the queue fails
// or the context ends.
func (o *Orchestrator) Drain(ctx context.Context, issn string) (Stats, error) {
	runID := uuid.New().String()
	start := time.Now()
	log := slog.With("run_id", runID, "issn", issn)

	dois, err := o.queue.Pending(ctx, issn)
	if err != nil {
		return Stats{}, fmt.Errorf("list pending for %s: %w", issn, err)
	}
	log.Info("starting drain", "pending", len(dois), "workers", o.cfg.Workers)

	o.mu.Lock()
	o.stats = Stats{}
	o.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers)
	for _, doi := range dois {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if !o.acquire(doi) {
				return nil
			}
			defer o.release(doi)

			state := o.process(gctx, issn, doi, log)
			o.record(state)
			return nil
		})
	}
	err = g.Wait()

	o.mu.Lock()
	stats := o.stats
	o.mu.Unlock()

	log.Info("drain finished",
		"processed", stats.Processed,
		"scraped", stats.Scraped,
		"already_done", stats.AlreadyDone,
		"failed", stats.Failed,
		"unsupported", stats.Unsupported,
		"duration", time.Since(start),
	)
	return stats, err
}

// process walks one DOI through the state machine and returns its
// terminal state. The queue entry is removed only after the article is
// persisted, or when a previous run already persisted it.
func (o *Orchestrator) process(ctx context.Context, issn, doi string, log *slog.Logger) State {
	state := StatePending

	done, err := o.articles.Exists(ctx, doi)
	if err != nil {
		log.Error("already-scraped check failed", "doi", doi, "error", err)
		return StateFailed
	}
	if done {
		state = StateAlreadyDone
		if err := o.queue.Dequeue(ctx, doi); err != nil {
			log.Error("dequeue of finished doi failed", "doi", doi, "error", err)
		}
		log.Debug("doi already scraped", "doi", doi)
		return state
	}

	state = StateResolving
	pageURL, err := o.resolver.Resolve(ctx, doi)
	if err != nil {
		var nre *apperr.NoRedirectError
		if errors.As(err, &nre) {
			log.Warn("doi does not reach publisher content", "doi", doi)
		} else {
			log.Error("resolution failed", "doi", doi, "state", state, "error", err)
		}
		return StateFailed
	}

	state = StateExtracting
	ex, err := o.registry.For(issn)
	if err != nil {
		log.Warn("no extractor for subscription", "doi", doi, "error", err)
		o.noteUnsupported()
		return StateFailed
	}
	art, err := ex.Extract(ctx, pageURL)
	if err != nil {
		log.Error("extraction failed", "doi", doi, "extractor", ex.Name(), "state", state, "error", err)
		return StateFailed
	}
	art.DOI = doi

	state = StatePersisted
	if err := o.articles.Save(ctx, art); err != nil {
		log.Error("persist failed", "doi", doi, "error", err)
		return StateFailed
	}
	if err := o.articles.MarkFullText(ctx, doi); err != nil {
		// The article is safe; only the record flag lagged.
		log.Warn("full-text flag update failed", "doi", doi, "error", err)
	}

	if err := o.queue.Dequeue(ctx, doi); err != nil {
		log.Error("dequeue failed, doi will be re-checked next drain", "doi", doi, "error", err)
		return state
	}
	state = StateDequeued
	log.Debug("doi scraped", "doi", doi, "extractor", ex.Name())
	return state
}

func (o *Orchestrator) acquire(doi string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, held := o.leases[doi]; held {
		return false
	}
	o.leases[doi] = struct{}{}
	return true
}

func (o *Orchestrator) release(doi string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.leases, doi)
}

func (o *Orchestrator) noteUnsupported() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stats.Unsupported++
}

func (o *Orchestrator) record(state State) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stats.Processed++
	switch state {
	case StateDequeued, StatePersisted:
		o.stats.Scraped++
	case StateAlreadyDone:
		o.stats.AlreadyDone++
	case StateFailed:
		o.stats.Failed++
	}
}
