package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ZipTales/internal/domain"
	"ZipTales/internal/metrics"
	"ZipTales/internal/ports"
)

const (
	defaultBatchSize   = 200
	defaultConcurrency = 4
)

// PipelineDeps wires all driven adapters into the batch pipeline.
type PipelineDeps struct {
	Source      ports.ArticleSource
	Repository  ports.ArticleRepository
	Scorer      *Scorer
	BatchSize   int
	Concurrency int
	Logger      *slog.Logger
}

// Pipeline implements article ingestion and batch rescoring.
type Pipeline struct {
	source      ports.ArticleSource
	repository  ports.ArticleRepository
	scorer      *Scorer
	batchSize   int
	concurrency int
	logger      *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		source:      deps.Source,
		repository:  deps.Repository,
		scorer:      deps.Scorer,
		batchSize:   deps.BatchSize,
		concurrency: deps.Concurrency,
		logger:      deps.Logger,
	}
	if p.scorer == nil {
		p.scorer = NewScorer(ScorerDeps{Repository: deps.Repository, Logger: deps.Logger})
	}
	if p.batchSize <= 0 {
		p.batchSize = defaultBatchSize
	}
	if p.concurrency <= 0 {
		p.concurrency = defaultConcurrency
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	return p
}

// batchTally is a BatchReport shared by worker goroutines.
type batchTally struct {
	mu     sync.Mutex
	job    string
	report domain.BatchReport
}

func (t *batchTally) add(status domain.ProcessingStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch status {
	case domain.StatusScored:
		t.report.Scored++
	case domain.StatusSkipped:
		t.report.Skipped++
	case domain.StatusFailed:
		t.report.Failed++
	}
	metrics.RecordBatch(t.job, string(status))
}

func (t *batchTally) seen(n int) {
	t.mu.Lock()
	t.report.Seen += n
	t.mu.Unlock()
}

func (t *batchTally) snapshot() domain.BatchReport {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.report
}

// Rescore pages through every stored article, recomputes its score and persists changes.
// Per-article failures are counted and logged; the run continues.
func (p *Pipeline) Rescore(ctx context.Context) (domain.BatchReport, error) {
	if p.repository == nil {
		return domain.BatchReport{}, ErrStorageDisabled
	}

	tally := &batchTally{job: "rescore"}
	after := uuid.Nil

	for {
		if err := ctx.Err(); err != nil {
			return tally.snapshot(), err
		}

		page, err := p.repository.ListPage(ctx, after, p.batchSize)
		if err != nil {
			return tally.snapshot(), fmt.Errorf("list articles: %w", err)
		}
		if len(page) == 0 {
			break
		}
		tally.seen(len(page))

		var g errgroup.Group
		g.SetLimit(p.concurrency)
		for _, article := range page {
			g.Go(func() error {
				tally.add(p.rescoreOne(ctx, article))
				return nil
			})
		}
		_ = g.Wait()

		after = page[len(page)-1].ID
		if len(page) < p.batchSize {
			break
		}
	}

	report := tally.snapshot()
	p.logger.Info("rescore finished", "seen", report.Seen, "scored", report.Scored,
		"skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}

func (p *Pipeline) rescoreOne(ctx context.Context, article domain.Article) domain.ProcessingStatus {
	analysis := p.scorer.Evaluate(ctx, article)
	if article.CredibilityScore != nil && *article.CredibilityScore == analysis.Score {
		return domain.StatusSkipped
	}

	if err := p.repository.SaveCredibilityScore(ctx, article.ID, analysis.Score); err != nil {
		p.logger.Warn("save score failed", "article", article.ID, "error", err)
		return domain.StatusFailed
	}
	return domain.StatusScored
}

// Ingest fetches fresh articles, scores the ones not stored yet and upserts them with their score.
func (p *Pipeline) Ingest(ctx context.Context, since time.Time) (domain.BatchReport, error) {
	if p.source == nil {
		return domain.BatchReport{}, nil
	}
	if p.repository == nil {
		return domain.BatchReport{}, ErrStorageDisabled
	}

	articles, err := p.source.Fetch(ctx, since)
	if err != nil {
		return domain.BatchReport{}, fmt.Errorf("fetch articles: %w", err)
	}

	ids := make([]string, len(articles))
	for i, art := range articles {
		ids[i] = art.ExternalID
	}

	known, err := p.repository.KnownExternalIDs(ctx, ids)
	if err != nil {
		return domain.BatchReport{}, fmt.Errorf("load known articles: %w", err)
	}

	tally := &batchTally{job: "ingest"}
	tally.seen(len(articles))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for _, article := range articles {
		if known[article.ExternalID] {
			tally.add(domain.StatusSkipped)
			continue
		}
		g.Go(func() error {
			tally.add(p.ingestOne(ctx, article))
			return nil
		})
	}
	_ = g.Wait()

	report := tally.snapshot()
	p.logger.Info("ingest finished", "seen", report.Seen, "scored", report.Scored,
		"skipped", report.Skipped, "failed", report.Failed)
	return report, nil
}

func (p *Pipeline) ingestOne(ctx context.Context, article domain.Article) domain.ProcessingStatus {
	analysis := p.scorer.Evaluate(ctx, article)
	score := analysis.Score
	article.CredibilityScore = &score

	id, err := p.repository.Upsert(ctx, article)
	if err != nil {
		p.logger.Warn("store article failed", "external_id", article.ExternalID, "error", err)
		return domain.StatusFailed
	}
	p.logger.Debug("article ingested", "id", id, "source", article.Source, "score", score)
	return domain.StatusScored
}
