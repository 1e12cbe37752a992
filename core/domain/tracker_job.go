package domain

import "time"

// DefaultApplicationStatus is stored and displayed when no status is given.
const DefaultApplicationStatus = "Applied"

// DateLayout is the wire format of date_applied.
const DateLayout = "2006-01-02"

// Outcome statuses counted by the global offers/rejections breakdown.
const (
	StatusOffer    = "Offer"
	StatusRejected = "Rejected"
)

// JobPosting is shared by every user who applied to it.
type JobPosting struct {
	ID          int64  `json:"jobs_id" db:"jobs_id"`
	Title       string `json:"job_title" db:"job_title"`
	Company     string `json:"company_name" db:"company_name"`
	Location    string `json:"job_location" db:"job_location"`
	Type        string `json:"job_type" db:"job_type"`
	Link        string `json:"job_link" db:"job_link"`
	Description string `json:"job_description" db:"job_description"`
}

// Application links a user to a posting. (JobID, UserID) is unique.
type Application struct {
	JobID       int64
	UserID      int64
	Status      string
	DateApplied *time.Time
}

// EffectiveStatus falls back to DefaultApplicationStatus for empty values.
func EffectiveStatus(status string) string {
	if status == "" {
		return DefaultApplicationStatus
	}
	return status
}

// UserJob is a posting joined with one user's application.
type UserJob struct {
	JobPosting
	DateApplied *string `json:"date_applied"`
	Status      string  `json:"job_status"`
}
