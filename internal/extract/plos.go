package extract

import (
	"context"

	"github.com/sagepublishing/bds-scraping/internal/apperr"
	"github.com/sagepublishing/bds-scraping/internal/domain"
)

// PLOS is a placeholder for the Ambra-hosted article layout. It is
// registered so PLOS subscriptions fail with "not implemented" rather
// than "unsupported", but yields no content yet.
type PLOS struct{}

func NewPLOS() *PLOS { return &PLOS{} }

func (p *PLOS) Name() string { return "plos" }

func (p *PLOS) Extract(ctx context.Context, pageURL string) (domain.Article, error) {
	return domain.Article{}, apperr.NewNotImplemented(p.Name())
}

var _ Extractor = (*PLOS)(nil)
