package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tracker_server/core/domain"
	"tracker_server/core/port/in"
	"tracker_server/core/port/out"
	"tracker_server/pkg/apperr"
	"tracker_server/pkg/logger"
)

// Service implements in.ProfileService
type Service struct {
	repo out.ProfileRepository
}

// NewService creates a new ProfileService
func NewService(repo out.ProfileRepository) in.ProfileService {
	return &Service{repo: repo}
}

func (s *Service) GetProfile(ctx context.Context, email string) (*domain.Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperr.MissingField("email", "Email is required")
	}

	rows, err := s.repo.ProfileRows(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	profile, ok := Aggregate(rows)
	if !ok {
		return nil, apperr.NotFound("No data found for the given email")
	}
	return profile, nil
}

func (s *Service) SaveProfile(ctx context.Context, req *in.SaveProfileRequest) error {
	update, err := Normalize(req)
	if err != nil {
		return err
	}

	err = s.repo.ReplaceProfile(ctx, update)
	switch {
	case err == nil:
	case errors.Is(err, out.ErrNotFound):
		return apperr.NotFound("User not found")
	case errors.Is(err, out.ErrDuplicate):
		return apperr.Conflict("Email already in use by another account").WithDetail("email", update.Email)
	default:
		return fmt.Errorf("save profile: %w", err)
	}

	logger.WithContext(ctx).WithFields(map[string]any{
		"work_experience": len(update.WorkExperience),
		"education":       len(update.Education),
		"email_changed":   update.EmailChanged(),
	}).Debug("profile replaced")
	return nil
}
