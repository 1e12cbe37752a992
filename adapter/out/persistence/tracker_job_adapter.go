package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"tracker_server/core/domain"

	"github.com/jmoiron/sqlx"
)

// JobAdapter implements out.JobRepository using PostgreSQL.
type JobAdapter struct {
	db *sqlx.DB
}

// NewJobAdapter creates a new JobAdapter.
func NewJobAdapter(db *sqlx.DB) *JobAdapter {
	return &JobAdapter{db: db}
}

const postingColumns = `j.jobs_id, j.job_title, j.company_name, j.job_location, j.job_type, j.job_link, j.job_description`

type userJobRow struct {
	domain.JobPosting
	DateApplied sql.NullString `db:"date_applied"`
	Status      string         `db:"job_status"`
}

// SaveApplication inserts the posting (when given) and upserts the application
// in a single transaction.
func (a *JobAdapter) SaveApplication(ctx context.Context, posting *domain.JobPosting, app *domain.Application) (int64, error) {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	jobID := app.JobID
	if posting != nil {
		err := tx.GetContext(ctx, &jobID, `
			INSERT INTO jobs (job_title, company_name, job_location, job_type, job_link, job_description)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING jobs_id
		`, posting.Title, posting.Company, posting.Location, posting.Type, posting.Link, posting.Description)
		if err != nil {
			return 0, fmt.Errorf("insert posting: %w", err)
		}
		posting.ID = jobID
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users_jobs (job_id, user_id, date_applied, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (job_id, user_id) DO UPDATE
		SET status = EXCLUDED.status, date_applied = EXCLUDED.date_applied
	`, jobID, app.UserID, app.DateApplied, app.Status)
	if err != nil {
		return 0, fmt.Errorf("upsert application: %w", translate(err))
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit application: %w", err)
	}
	app.JobID = jobID
	return jobID, nil
}

// EditApplication updates the shared posting and the caller's application row.
func (a *JobAdapter) EditApplication(ctx context.Context, posting *domain.JobPosting, app *domain.Application) error {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE jobs
		SET job_title = $1, company_name = $2, job_location = $3, job_type = $4,
		    job_link = $5, job_description = $6
		WHERE jobs_id = $7
	`, posting.Title, posting.Company, posting.Location, posting.Type, posting.Link, posting.Description, posting.ID)
	if err != nil {
		return fmt.Errorf("update posting: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE users_jobs
		SET status = $1, date_applied = $2
		WHERE job_id = $3 AND user_id = $4
	`, app.Status, app.DateApplied, app.JobID, app.UserID)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit edit: %w", err)
	}
	return nil
}

func (a *JobAdapter) DeleteApplication(ctx context.Context, jobID, userID int64) (bool, error) {
	res, err := a.db.ExecContext(ctx, `DELETE FROM users_jobs WHERE job_id = $1 AND user_id = $2`, jobID, userID)
	if err != nil {
		return false, fmt.Errorf("delete application: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete application: %w", err)
	}
	return n > 0, nil
}

func (a *JobAdapter) ListUserJobs(ctx context.Context, userID int64) ([]domain.UserJob, error) {
	query := `
		SELECT ` + postingColumns + `,
		       TO_CHAR(uj.date_applied, 'YYYY-MM-DD') AS date_applied,
		       COALESCE(NULLIF(uj.status, ''), 'Applied') AS job_status
		FROM users_jobs uj
		INNER JOIN jobs j ON uj.job_id = j.jobs_id
		WHERE uj.user_id = $1
		ORDER BY uj.date_applied DESC NULLS LAST, j.jobs_id DESC
	`

	var rows []userJobRow
	if err := a.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list user jobs: %w", err)
	}

	jobs := make([]domain.UserJob, len(rows))
	for i, r := range rows {
		jobs[i] = domain.UserJob{JobPosting: r.JobPosting, DateApplied: nullString(r.DateApplied), Status: r.Status}
	}
	return jobs, nil
}

func (a *JobAdapter) ListPostings(ctx context.Context) ([]domain.JobPosting, error) {
	var postings []domain.JobPosting
	query := `SELECT ` + postingColumns + ` FROM jobs j ORDER BY j.jobs_id`
	if err := a.db.SelectContext(ctx, &postings, query); err != nil {
		return nil, fmt.Errorf("list postings: %w", err)
	}
	return postings, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
