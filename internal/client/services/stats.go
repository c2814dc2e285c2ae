package services

import (
	"context"
	"fmt"

	"github.com/cracksmith/cracksmith/internal/client/client"
	"github.com/cracksmith/cracksmith/internal/client/models"
)

// summaryPageSize is the page size used when walking every job.
const summaryPageSize = 100

// StatsService reads user statistics and derives counts from job lists.
type StatsService interface {
	UserStats(ctx context.Context) (*models.UserStats, error)
	// Summary walks all of the caller's jobs and counts them per status.
	Summary(ctx context.Context) (models.StatusSummary, error)
	// Dashboard returns the server's chart data for the caller.
	Dashboard(ctx context.Context) (*models.Dashboard, error)
}

type statsService struct {
	client client.Client
}

func NewStatsService(c client.Client) StatsService {
	return &statsService{client: c}
}

func (s *statsService) UserStats(ctx context.Context) (*models.UserStats, error) {
	st, err := s.client.UserStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	return st, nil
}

func (s *statsService) Summary(ctx context.Context) (models.StatusSummary, error) {
	var all []models.Job
	for page := 1; ; page++ {
		p, err := s.client.ListJobs(ctx, client.ListJobsRequest{Page: page, PerPage: summaryPageSize})
		if err != nil {
			return models.StatusSummary{}, fmt.Errorf("list jobs page %d: %w", page, err)
		}
		all = append(all, p.Jobs...)
		if page >= p.TotalPages || len(p.Jobs) == 0 {
			break
		}
	}
	return models.Summarize(all), nil
}

func (s *statsService) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	d, err := s.client.Dashboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return d, nil
}
