package out

import (
	"context"

	"tracker_server/core/domain"
)

// JobRepository manages shared postings and per-user applications.
type JobRepository interface {
	// SaveApplication inserts posting first when it is non-nil, then upserts the
	// application keyed by (job id, user id). Both writes share a transaction.
	SaveApplication(ctx context.Context, posting *domain.JobPosting, app *domain.Application) (int64, error)

	// EditApplication updates the posting in place and the user's application row.
	// Returns ErrNotFound when either row is missing.
	EditApplication(ctx context.Context, posting *domain.JobPosting, app *domain.Application) error

	// DeleteApplication removes only the caller's application row.
	DeleteApplication(ctx context.Context, jobID, userID int64) (bool, error)

	ListUserJobs(ctx context.Context, userID int64) ([]domain.UserJob, error)
	ListPostings(ctx context.Context) ([]domain.JobPosting, error)
}
