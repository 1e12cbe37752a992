package in

import (
	"context"

	"tracker_server/core/domain"
)

// AuthService covers account creation, sign-in and the OTP password reset.
type AuthService interface {
	SignUp(ctx context.Context, req *SignUpRequest) error
	SignIn(ctx context.Context, req *SignInRequest) (string, error)

	// OTP flow: generate → verify → reset.
	GenerateOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, password string) error
}

type ProfileService interface {
	GetProfile(ctx context.Context, email string) (*domain.Profile, error)
	SaveProfile(ctx context.Context, req *SaveProfileRequest) error
}

type JobService interface {
	CreateJob(ctx context.Context, req *JobRequest) (int64, error)
	EditJob(ctx context.Context, req *JobRequest) error
	DeleteJob(ctx context.Context, jobID int64, email string) error
	ListUserJobs(ctx context.Context, email string) ([]domain.UserJob, error)
	ListAllJobs(ctx context.Context) ([]domain.JobPosting, error)
}

type AnalyticsService interface {
	UserAnalytics(ctx context.Context, email string) (*domain.UserAnalytics, error)
	GlobalAnalytics(ctx context.Context) (*domain.GlobalAnalytics, error)
}

type SearchService interface {
	SearchAdzuna(ctx context.Context, q *JobSearchQuery) (*domain.SearchResult, error)
	SearchJooble(ctx context.Context, q *JoobleSearchQuery) (*domain.SearchResult, error)
}

type DocumentService interface {
	GenerateCoverLetter(ctx context.Context, req *GenerateDocumentRequest) (string, error)
	GenerateResume(ctx context.Context, req *GenerateDocumentRequest) (string, error)
	ListDocuments(ctx context.Context, email string, limit int) ([]domain.GeneratedDocument, error)
}
