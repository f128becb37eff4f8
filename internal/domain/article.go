package domain

import (
	"time"

	"github.com/google/uuid"

	"ZipTales/internal/credibility"
)

// Article is the stored news record the scoring service reads and annotates.
type Article struct {
	ID                 uuid.UUID
	ExternalID         string
	Title              string
	Summary            string
	Content            string
	Author             string
	Source             string
	URL                string
	Category           string
	Upvotes            int
	Downvotes          int
	BlockchainVerified bool
	CredibilityScore   *int
	PublishedAt        time.Time
	UpdatedAt          time.Time
}

// Body returns the text used for heuristic analysis: content, falling back to the summary.
func (a Article) Body() string {
	if a.Content != "" {
		return a.Content
	}
	return a.Summary
}

// ScoredArticle pairs an article with the result computed for it.
type ScoredArticle struct {
	Article  Article
	Analysis credibility.Analysis
	ScoredAt time.Time
}

// ProcessingStatus enumerates pipeline outcomes per article.
type ProcessingStatus string

const (
	StatusScored  ProcessingStatus = "scored"
	StatusSkipped ProcessingStatus = "skipped"
	StatusFailed  ProcessingStatus = "failed"
)

// BatchReport summarizes one ingest or rescore run.
type BatchReport struct {
	Seen    int
	Scored  int
	Skipped int
	Failed  int
}
