package document

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tracker_server/core/domain"
	"tracker_server/core/port/in"
	"tracker_server/core/port/out"
	"tracker_server/pkg/apperr"
	"tracker_server/pkg/logger"
	"tracker_server/pkg/metrics"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service implements in.DocumentService
type Service struct {
	users     out.UserRepository
	profiles  in.ProfileService
	generator out.TextGenerator
	archive   out.DocumentArchive // optional
	now       func() time.Time
}

// NewService creates a new DocumentService. archive may be nil.
func NewService(users out.UserRepository, profiles in.ProfileService, generator out.TextGenerator, archive out.DocumentArchive) in.DocumentService {
	return &Service{
		users:     users,
		profiles:  profiles,
		generator: generator,
		archive:   archive,
		now:       time.Now,
	}
}

func (s *Service) GenerateCoverLetter(ctx context.Context, req *in.GenerateDocumentRequest) (string, error) {
	description, email, err := requireInputs(req)
	if err != nil {
		return "", err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("cover letter lookup: %w", err)
	}
	if user == nil {
		return "", apperr.NotFound("No user found with that email")
	}

	company := extractCompany(description)
	prompt, err := render(coverLetterTemplate, coverLetterData{
		FullName:       user.FullName(),
		City:           user.City,
		Email:          user.Email,
		Phone:          user.Phone,
		Company:        company,
		JobDescription: description,
	})
	if err != nil {
		return "", fmt.Errorf("render cover letter prompt: %w", err)
	}

	text, err := s.generate(ctx, domain.GenerationRequest{
		System:    coverLetterSystem,
		Prompt:    prompt,
		MaxTokens: coverLetterMaxTokens,
	})
	if err != nil {
		return "", err
	}

	s.store(ctx, &domain.GeneratedDocument{
		Email:          user.Email,
		Kind:           domain.DocumentCoverLetter,
		Company:        company,
		JobDescription: description,
		Content:        text,
	})
	return text, nil
}

func (s *Service) GenerateResume(ctx context.Context, req *in.GenerateDocumentRequest) (string, error) {
	description, email, err := requireInputs(req)
	if err != nil {
		return "", err
	}

	profile, err := s.profiles.GetProfile(ctx, email)
	if err != nil {
		return "", err
	}

	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode profile: %w", err)
	}
	prompt, err := render(resumeTemplate, resumeData{
		Profile:        string(profileJSON),
		JobDescription: description,
	})
	if err != nil {
		return "", fmt.Errorf("render resume prompt: %w", err)
	}

	text, err := s.generate(ctx, domain.GenerationRequest{
		System:    resumeSystem,
		Prompt:    prompt,
		MaxTokens: resumeMaxTokens,
	})
	if err != nil {
		return "", err
	}

	s.store(ctx, &domain.GeneratedDocument{
		Email:          profile.Email,
		Kind:           domain.DocumentResume,
		JobDescription: description,
		Content:        text,
	})
	return text, nil
}

func (s *Service) ListDocuments(ctx context.Context, email string, limit int) ([]domain.GeneratedDocument, error) {
	if s.archive == nil {
		return nil, apperr.NotFound("Document archive not configured")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperr.MissingField("email", "Email is required")
	}
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	docs, err := s.archive.ListByEmail(ctx, email, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if docs == nil {
		docs = []domain.GeneratedDocument{}
	}
	return docs, nil
}

func (s *Service) generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	start := time.Now()
	text, err := s.generator.Generate(ctx, req)
	if err != nil {
		return "", apperr.UpstreamFailure("openai", err)
	}
	logger.WithContext(ctx).WithDuration(time.Since(start)).WithField("model", s.generator.Model()).Debug("document generated")
	return strings.TrimSpace(text), nil
}

// store archives a generated document. Failures are logged only.
func (s *Service) store(ctx context.Context, doc *domain.GeneratedDocument) {
	metrics.DocumentsGenerated.WithLabelValues(string(doc.Kind)).Inc()
	if s.archive == nil {
		return
	}
	doc.ID = uuid.NewString()
	doc.Model = s.generator.Model()
	doc.CreatedAt = s.now().UTC()
	if err := s.archive.Save(ctx, doc); err != nil {
		logger.WithContext(ctx).WithError(err).WithField("kind", doc.Kind).Warn("failed to archive generated document")
	}
}

func requireInputs(req *in.GenerateDocumentRequest) (description, email string, err error) {
	description = strings.TrimSpace(req.JobDescription)
	email = strings.TrimSpace(req.Email)
	if description == "" || email == "" {
		return "", "", apperr.MissingField("job_description", "Job description and email are required")
	}
	return description, email, nil
}
