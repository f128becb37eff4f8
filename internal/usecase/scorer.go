package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"ZipTales/internal/credibility"
	"ZipTales/internal/domain"
	"ZipTales/internal/infrastructure/parser"
	"ZipTales/internal/metrics"
	"ZipTales/internal/ports"
)

// ErrStorageDisabled is returned by operations that need the article repository when none is configured.
var ErrStorageDisabled = errors.New("article storage is not configured")

// ScorerDeps wires the engine with its optional collaborators.
type ScorerDeps struct {
	Engine     *credibility.Engine
	Repository ports.ArticleRepository
	Cache      ports.ResultCache
	Attestor   ports.Attestor
	Logger     *slog.Logger
	Now        func() time.Time
}

// Scorer adapts stored articles into engine input, resolving attestation and caching results.
type Scorer struct {
	engine     *credibility.Engine
	repository ports.ArticleRepository
	cache      ports.ResultCache
	attestor   ports.Attestor
	logger     *slog.Logger
	now        func() time.Time
}

// NewScorer constructs the article scorer. A nil engine gets the built-in tables.
func NewScorer(deps ScorerDeps) *Scorer {
	s := &Scorer{
		engine:     deps.Engine,
		repository: deps.Repository,
		cache:      deps.Cache,
		attestor:   deps.Attestor,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	if s.engine == nil {
		s.engine = credibility.NewEngine(credibility.Options{})
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Engine exposes the underlying engine for stateless callers.
func (s *Scorer) Engine() *credibility.Engine {
	return s.engine
}

// CacheKey identifies one version of a stored article.
func CacheKey(article domain.Article) string {
	return article.ID.String() + ":" + strconv.FormatInt(article.UpdatedAt.UnixNano(), 10)
}

// Evaluate scores an article. Stored articles (non-nil ID) go through the result cache.
func (s *Scorer) Evaluate(ctx context.Context, article domain.Article) credibility.Analysis {
	cacheable := s.cache != nil && article.ID != uuid.Nil
	key := CacheKey(article)

	if cacheable {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("cache lookup failed", "article", article.ID, "error", err)
		}
		metrics.RecordCache(ok)
		if ok {
			return cached
		}
	}

	attested, settled := s.attested(ctx, article)
	input := credibility.NewInput(
		article.Source,
		parser.PlainText(article.Body()),
		article.Upvotes,
		article.Downvotes,
		attested,
	)
	analysis := s.engine.Analyze(input)
	metrics.RecordScore("article", analysis.Score)

	if cacheable && settled {
		if err := s.cache.Set(ctx, key, analysis); err != nil {
			s.logger.Warn("cache store failed", "article", article.ID, "error", err)
		}
	}
	return analysis
}

// ScoreByID loads, scores and optionally persists the credibility score of a stored article.
func (s *Scorer) ScoreByID(ctx context.Context, id uuid.UUID, persist bool) (domain.ScoredArticle, error) {
	if s.repository == nil {
		return domain.ScoredArticle{}, ErrStorageDisabled
	}

	article, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return domain.ScoredArticle{}, fmt.Errorf("load article: %w", err)
	}

	analysis := s.Evaluate(ctx, article)

	if persist {
		if err := s.repository.SaveCredibilityScore(ctx, id, analysis.Score); err != nil {
			return domain.ScoredArticle{}, fmt.Errorf("persist score: %w", err)
		}
		score := analysis.Score
		article.CredibilityScore = &score
		s.logger.Info("credibility score saved", "article", id, "score", score)
	}

	return domain.ScoredArticle{Article: article, Analysis: analysis, ScoredAt: s.now().UTC()}, nil
}

// attested trusts the stored flag first; lookup failures degrade to false.
// settled is false when the gateway answered "not yet" or failed, so the result may still change.
func (s *Scorer) attested(ctx context.Context, article domain.Article) (attested, settled bool) {
	if article.BlockchainVerified {
		return true, true
	}
	if s.attestor == nil {
		return false, true
	}

	ok, err := s.attestor.IsAttested(ctx, article.Body())
	if err != nil {
		s.logger.Warn("attestation lookup failed", "article", article.ID, "error", err)
		return false, false
	}
	return ok, ok
}
