package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"ZipTales/internal/credibility"
	"ZipTales/internal/domain"
)

// ErrArticleNotFound is returned by repositories for unknown article IDs.
var ErrArticleNotFound = errors.New("article not found")

// ArticleSource pulls fresh articles from upstream providers.
type ArticleSource interface {
	Fetch(ctx context.Context, since time.Time) ([]domain.Article, error)
}

// ArticleRepository reads articles and persists their credibility scores.
type ArticleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (domain.Article, error)
	ListPage(ctx context.Context, after uuid.UUID, limit int) ([]domain.Article, error)
	KnownExternalIDs(ctx context.Context, ids []string) (map[string]bool, error)
	Upsert(ctx context.Context, article domain.Article) (uuid.UUID, error)
	SaveCredibilityScore(ctx context.Context, id uuid.UUID, score int) error
}

// ResultCache stores computed analyses per article version.
type ResultCache interface {
	Get(ctx context.Context, key string) (credibility.Analysis, bool, error)
	Set(ctx context.Context, key string, analysis credibility.Analysis) error
}

// Attestor answers whether external attestation exists for a piece of content.
type Attestor interface {
	IsAttested(ctx context.Context, content string) (bool, error)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
