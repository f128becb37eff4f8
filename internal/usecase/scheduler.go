package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ZipTales/internal/ports"
)

// Scheduler wires the interval driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger

	mu      sync.Mutex
	lastRun time.Time
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}
	return s.driver.Start(ctx, func(trigger time.Time) { s.RunOnce(ctx, trigger) })
}

// RunOnce ingests everything published since the previous run, then rescores stored articles.
func (s *Scheduler) RunOnce(ctx context.Context, trigger time.Time) {
	s.mu.Lock()
	since := s.lastRun
	s.lastRun = trigger
	s.mu.Unlock()

	if _, err := s.pipeline.Ingest(ctx, since); err != nil {
		s.logger.Error("scheduled ingest failed", "trigger", trigger, "error", err)
	}
	if _, err := s.pipeline.Rescore(ctx); err != nil {
		s.logger.Error("scheduled rescore failed", "trigger", trigger, "error", err)
	}
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
