package api

import (
	"context"

	"paperflow/internal/paper"
)

// RunReader abstracts the run-store queries the read side needs.
type RunReader interface {
	List(ctx context.Context, statuses ...paper.Status) ([]*paper.Run, error)
	Get(ctx context.Context, key string) (*paper.Run, error)
	Stats(ctx context.Context) (map[paper.Status]int, error)
	Clear(ctx context.Context, statuses ...paper.Status) (int64, error)
}

// RunService exposes run queries returning API DTOs.
type RunService struct {
	store RunReader
}

// NewRunService constructs a RunService around the provided reader.
func NewRunService(store RunReader) *RunService {
	if store == nil {
		return nil
	}
	return &RunService{store: store}
}

// List returns runs filtered by status.
func (s *RunService) List(ctx context.Context, statuses ...paper.Status) ([]RunSummary, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	runs, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	summaries := make([]RunSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, FromRun(run))
	}
	return summaries, nil
}

// Describe fetches a single run by key.
func (s *RunService) Describe(ctx context.Context, key string) (*RunSummary, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	run, err := s.store.Get(ctx, key)
	if err != nil || run == nil {
		return nil, err
	}
	dto := FromRun(run)
	return &dto, nil
}

// Stats returns run counts keyed by status string.
func (s *RunService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]int, len(stats))
	for status, count := range stats {
		merged[string(status)] = count
	}
	return merged, nil
}

// Clear removes finished runs. With no statuses it clears completed and
// failed runs only; in-flight and suspended runs are never swept.
func (s *RunService) Clear(ctx context.Context, statuses ...paper.Status) (int64, error) {
	if s == nil || s.store == nil {
		return 0, nil
	}
	if len(statuses) == 0 {
		statuses = []paper.Status{paper.StatusCompleted, paper.StatusFailed}
	}
	return s.store.Clear(ctx, statuses...)
}
