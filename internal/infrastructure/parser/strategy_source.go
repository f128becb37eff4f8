package parser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ZipTales/internal/config"
	"ZipTales/internal/domain"
	"ZipTales/internal/ports"
	"ZipTales/internal/scanner"
)

// StrategySource implements ArticleSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
	}
}

// Fetch iterates over configured sites and executes their scanners.
// A failing site is logged and skipped so one broken publisher does not block ingestion.
func (s *StrategySource) Fetch(ctx context.Context, since time.Time) ([]domain.Article, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch", "sites", len(s.sites), "since", since.Format(time.RFC3339))

	var (
		aggregated []domain.Article
		failed     int
		lastErr    error
	)
	for _, site := range s.sites {
		s.debug("process site", "site", site.Name, "scanner", site.Scanner, "urls", len(site.URLs))
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w (available: %s)",
				site.Name, err, strings.Join(s.registry.Names(), ", "))
		}

		req := scanner.Request{
			Since:    since,
			SiteName: site.Name,
			URLs:     site.URLs,
			Options:  site.Options,
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			failed++
			lastErr = fmt.Errorf("scan site %s: %w", site.Name, err)
			if s.logger != nil {
				s.logger.Warn("site scan failed", "site", site.Name, "error", err)
			}
			continue
		}

		for i := range results {
			if results[i].Source == "" {
				results[i].Source = site.Name
			}
		}
		s.debug("site produced articles", "site", site.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	if failed > 0 && failed == len(s.sites) {
		return nil, lastErr
	}

	s.debug("strategy source done", "total_articles", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
