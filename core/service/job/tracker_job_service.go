package job

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tracker_server/core/domain"
	"tracker_server/core/port/in"
	"tracker_server/core/port/out"
	"tracker_server/pkg/apperr"
	"tracker_server/pkg/logger"
)

// Service implements in.JobService
type Service struct {
	users out.UserRepository
	jobs  out.JobRepository
}

// NewService creates a new JobService
func NewService(users out.UserRepository, jobs out.JobRepository) in.JobService {
	return &Service{users: users, jobs: jobs}
}

// CreateJob records an application, creating the posting first when no job id
// is given. Re-applying to the same posting overwrites status and date.
func (s *Service) CreateJob(ctx context.Context, req *in.JobRequest) (int64, error) {
	user, err := s.resolveUser(ctx, req.OwnerEmail())
	if err != nil {
		return 0, err
	}

	app, err := applicationFrom(req, user.ID)
	if err != nil {
		return 0, err
	}

	var posting *domain.JobPosting
	if req.JobID.Int64() == 0 {
		posting = postingFrom(req)
	}

	jobID, err := s.jobs.SaveApplication(ctx, posting, app)
	if err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return 0, apperr.NotFound("Job not found")
		}
		return 0, fmt.Errorf("create job: %w", err)
	}

	logger.WithContext(ctx).WithFields(map[string]any{
		"job_id":      jobID,
		"new_posting": posting != nil,
	}).Debug("application saved")
	return jobID, nil
}

// EditJob updates the shared posting in place and the caller's application row.
func (s *Service) EditJob(ctx context.Context, req *in.JobRequest) error {
	if req.JobID.Int64() == 0 {
		return apperr.MissingField("job_id", "Job ID is required")
	}

	user, err := s.resolveUser(ctx, req.OwnerEmail())
	if err != nil {
		return err
	}

	app, err := applicationFrom(req, user.ID)
	if err != nil {
		return err
	}
	posting := postingFrom(req)
	posting.ID = app.JobID

	if err := s.jobs.EditApplication(ctx, posting, app); err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return apperr.NotFound("Job not found")
		}
		return fmt.Errorf("edit job: %w", err)
	}
	return nil
}

// DeleteJob removes the caller's application only. The posting stays.
// Deleting an application that does not exist is not an error.
func (s *Service) DeleteJob(ctx context.Context, jobID int64, email string) error {
	if jobID == 0 {
		return apperr.MissingField("jobs_id", "Job ID is required")
	}

	user, err := s.resolveUser(ctx, email)
	if err != nil {
		return err
	}

	deleted, err := s.jobs.DeleteApplication(ctx, jobID, user.ID)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if !deleted {
		logger.WithContext(ctx).WithField("job_id", jobID).Debug("no application to delete")
	}
	return nil
}

func (s *Service) ListUserJobs(ctx context.Context, email string) ([]domain.UserJob, error) {
	user, err := s.resolveUser(ctx, email)
	if err != nil {
		return nil, err
	}

	jobs, err := s.jobs.ListUserJobs(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list user jobs: %w", err)
	}
	for i := range jobs {
		jobs[i].Status = domain.EffectiveStatus(jobs[i].Status)
	}
	if jobs == nil {
		jobs = []domain.UserJob{}
	}
	return jobs, nil
}

func (s *Service) ListAllJobs(ctx context.Context) ([]domain.JobPosting, error) {
	postings, err := s.jobs.ListPostings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	if postings == nil {
		postings = []domain.JobPosting{}
	}
	return postings, nil
}

func (s *Service) resolveUser(ctx context.Context, email string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperr.MissingField("email", "Email is required")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}
	return user, nil
}

func postingFrom(req *in.JobRequest) *domain.JobPosting {
	return &domain.JobPosting{
		ID:          req.JobID.Int64(),
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		Type:        req.Type,
		Link:        req.Link,
		Description: req.Description,
	}
}

func applicationFrom(req *in.JobRequest, userID int64) (*domain.Application, error) {
	applied, err := parseDateApplied(req.DateApplied)
	if err != nil {
		return nil, err
	}
	return &domain.Application{
		JobID:       req.JobID.Int64(),
		UserID:      userID,
		Status:      domain.EffectiveStatus(strings.TrimSpace(req.Status)),
		DateApplied: applied,
	}, nil
}

// parseDateApplied accepts YYYY-MM-DD and timestamps that start with one.
func parseDateApplied(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if len(s) > len(domain.DateLayout) && s[len(domain.DateLayout)] == 'T' {
		s = s[:len(domain.DateLayout)]
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return nil, apperr.InvalidInput("date_applied", "expected YYYY-MM-DD")
	}
	return &t, nil
}
