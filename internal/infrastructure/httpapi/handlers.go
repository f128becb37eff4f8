package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"ZipTales/internal/credibility"
	"ZipTales/internal/infrastructure/parser"
	"ZipTales/internal/metrics"
	"ZipTales/internal/ports"
	"ZipTales/internal/usecase"
)

const legacyFailureMessage = "Failed to calculate credibility"

type errorResponse struct {
	Error string `json:"error"`
}

type legacyRequest struct {
	Source             string `json:"source"`
	Content            string `json:"content"`
	UserVotes          int    `json:"userVotes"`
	BlockchainVerified bool   `json:"blockchainVerified"`
}

type legacyBreakdown struct {
	SourceReliability      int `json:"sourceReliability"`
	FactualAccuracy        int `json:"factualAccuracy"`
	BiasLevel              int `json:"biasLevel"`
	UserVotes              int `json:"userVotes"`
	BlockchainVerification int `json:"blockchainVerification"`
}

type legacyResponse struct {
	Score     int             `json:"score"`
	Breakdown legacyBreakdown `json:"breakdown"`
}

type analyzeRequest struct {
	Source    string `json:"source"`
	Content   string `json:"content"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
	Attested  bool   `json:"attested"`
}

type articleCredibilityResponse struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Source string    `json:"source"`
	credibility.Analysis
	ScoredAt time.Time `json:"scoredAt"`
	Saved    bool      `json:"saved"`
}

// CredibilityHandler serves the scoring endpoints.
type CredibilityHandler struct {
	scorer *usecase.Scorer
	engine *credibility.Engine
	logger *slog.Logger
}

// NewCredibilityHandler wires the handler to a scorer.
func NewCredibilityHandler(scorer *usecase.Scorer, logger *slog.Logger) *CredibilityHandler {
	if scorer == nil {
		scorer = usecase.NewScorer(usecase.ScorerDeps{Logger: logger})
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CredibilityHandler{scorer: scorer, engine: scorer.Engine(), logger: logger}
}

// Score handles POST /api/credibility. Any failure maps to a generic 500.
func (h *CredibilityHandler) Score(c echo.Context) error {
	var req legacyRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Warn("credibility request rejected", "error", err)
		metrics.RecordScoreError("simple")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: legacyFailureMessage})
	}

	result := h.engine.ScoreSimple(credibility.SimpleInput{
		Source:    req.Source,
		Text:      parser.PlainText(req.Content),
		UserVotes: req.UserVotes,
		Attested:  req.BlockchainVerified,
	})
	metrics.RecordScore("simple", result.Score)

	return c.JSON(http.StatusOK, legacyResponse{
		Score: result.Score,
		Breakdown: legacyBreakdown{
			SourceReliability:      result.Breakdown.SourceReliability,
			FactualAccuracy:        result.Breakdown.FactualAccuracy,
			BiasLevel:              result.Breakdown.BiasLevel,
			UserVotes:              result.Breakdown.UserVotes,
			BlockchainVerification: result.Breakdown.Attestation,
		},
	})
}

// Analyze handles POST /api/credibility/analyze with raw vote counts.
func (h *CredibilityHandler) Analyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		metrics.RecordScoreError("analyze")
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	analysis := h.engine.Analyze(credibility.NewInput(
		req.Source,
		parser.PlainText(req.Content),
		req.Upvotes,
		req.Downvotes,
		req.Attested,
	))
	metrics.RecordScore("analyze", analysis.Score)

	return c.JSON(http.StatusOK, analysis)
}

// GetArticle handles GET /api/articles/:id/credibility.
func (h *CredibilityHandler) GetArticle(c echo.Context) error {
	return h.scoreArticle(c, false)
}

// SaveArticle handles PUT /api/articles/:id/credibility and persists the score.
func (h *CredibilityHandler) SaveArticle(c echo.Context) error {
	return h.scoreArticle(c, true)
}

func (h *CredibilityHandler) scoreArticle(c echo.Context, persist bool) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid article id"})
	}

	scored, err := h.scorer.ScoreByID(c.Request().Context(), id, persist)
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrStorageDisabled):
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	case errors.Is(err, ports.ErrArticleNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		h.logger.Error("article scoring failed", "article", id, "persist", persist, "error", err)
		metrics.RecordScoreError("article")
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: legacyFailureMessage})
	}

	return c.JSON(http.StatusOK, articleCredibilityResponse{
		ID:       scored.Article.ID,
		Title:    scored.Article.Title,
		Source:   scored.Article.Source,
		Analysis: scored.Analysis,
		ScoredAt: scored.ScoredAt,
		Saved:    persist,
	})
}

// SourceRating handles GET /api/sources/rating?source=.
func (h *CredibilityHandler) SourceRating(c echo.Context) error {
	source := strings.TrimSpace(c.QueryParam("source"))
	if source == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "source query parameter is required"})
	}
	return c.JSON(http.StatusOK, h.engine.SourceRating(source))
}
