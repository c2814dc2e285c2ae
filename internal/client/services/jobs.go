package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cracksmith/cracksmith/internal/client/client"
	"github.com/cracksmith/cracksmith/internal/client/models"
	"github.com/cracksmith/cracksmith/internal/logging"
)

// DefaultPerPage is used when a JobFilter leaves PerPage at zero.
const DefaultPerPage = 20

// JobFilter selects one page of jobs. An empty Status lists all statuses.
type JobFilter struct {
	Status  models.JobStatus
	Page    int
	PerPage int
}

// JobService submits, lists and deletes cracking jobs. Job statuses are
// observed, never driven: every returned Job is a fresh server snapshot
// that replaces any copy the caller holds.
type JobService interface {
	Submit(ctx context.Context, hashValue string, hashType models.HashType) (*models.Job, error)
	List(ctx context.Context, f JobFilter) (*models.JobPage, error)
	Get(ctx context.Context, id int64) (*models.Job, error)
	// Wait polls the job every interval until it reaches a terminal status.
	// When ctx ends first, the last snapshot seen is returned with ctx.Err().
	Wait(ctx context.Context, id int64, interval time.Duration) (*models.Job, error)
	// Delete applies models.CanDelete to the caller's snapshot before any
	// request is made.
	Delete(ctx context.Context, job models.Job) error
	// DeleteByID asks the server directly; it is the final arbiter.
	DeleteByID(ctx context.Context, id int64) error
}

type jobService struct {
	client client.Client
	log    logging.Logger
}

func NewJobService(c client.Client, log logging.Logger) JobService {
	if log == nil {
		log = logging.Nop()
	}
	return &jobService{client: c, log: log.With("component", "jobs")}
}

func (s *jobService) Submit(ctx context.Context, hashValue string, hashType models.HashType) (*models.Job, error) {
	hashValue = strings.TrimSpace(hashValue)
	if hashValue == "" {
		return nil, fmt.Errorf("%w: hash value is empty", client.ErrValidation)
	}
	t, ok := models.ParseHashType(string(hashType))
	if !ok {
		return nil, fmt.Errorf("%w: unsupported hash type %q", client.ErrValidation, hashType)
	}

	job, err := s.client.CreateJob(ctx, hashValue, t)
	if err != nil {
		return nil, fmt.Errorf("submit job: %w", err)
	}
	s.log.Info(ctx, "job submitted", "job_id", job.ID, "hash_type", job.HashType)
	return job, nil
}

// pageParams applies DefaultPerPage and rejects non-positive values.
func pageParams(page, perPage int) (client.PageRequest, error) {
	if perPage == 0 {
		perPage = DefaultPerPage
	}
	if page < 1 || perPage < 1 {
		return client.PageRequest{}, fmt.Errorf("%w: page and per-page must be positive", client.ErrValidation)
	}
	return client.PageRequest{Page: page, PerPage: perPage}, nil
}

func (f JobFilter) request() (client.ListJobsRequest, error) {
	p, err := pageParams(f.Page, f.PerPage)
	if err != nil {
		return client.ListJobsRequest{}, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return client.ListJobsRequest{}, fmt.Errorf("%w: unknown status %q", client.ErrValidation, f.Status)
	}
	return client.ListJobsRequest{Status: f.Status, Page: p.Page, PerPage: p.PerPage}, nil
}

func (s *jobService) List(ctx context.Context, f JobFilter) (*models.JobPage, error) {
	req, err := f.request()
	if err != nil {
		return nil, err
	}

	page, err := s.client.ListJobs(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return page, nil
}

func (s *jobService) Get(ctx context.Context, id int64) (*models.Job, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid job id %d", client.ErrValidation, id)
	}
	job, err := s.client.GetJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job %d: %w", id, err)
	}
	return job, nil
}

func (s *jobService) Wait(ctx context.Context, id int64, interval time.Duration) (*models.Job, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: poll interval must be positive", client.ErrValidation)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *models.Job
	for {
		job, err := s.Get(ctx, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return last, ctxErr
			}
			return nil, err
		}
		last = job
		if job.Status.Terminal() {
			return job, nil
		}
		s.log.Debug(ctx, "job still running", "job_id", id, "status", job.Status, "attempts", job.Attempts)

		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *jobService) Delete(ctx context.Context, job models.Job) error {
	if !models.CanDelete(job.Status) {
		return fmt.Errorf("%w: job %d is %s", client.ErrConflict, job.ID, job.Status)
	}
	return s.DeleteByID(ctx, job.ID)
}

func (s *jobService) DeleteByID(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid job id %d", client.ErrValidation, id)
	}
	if err := s.client.DeleteJob(ctx, id); err != nil {
		return fmt.Errorf("delete job %d: %w", id, err)
	}
	s.log.Info(ctx, "job deleted", "job_id", id)
	return nil
}
