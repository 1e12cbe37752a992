package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"tracker_server/core/domain"
	"tracker_server/core/port/in"
	"tracker_server/core/port/out"
	"tracker_server/pkg/apperr"
	"tracker_server/pkg/logger"
	"tracker_server/pkg/metrics"
)

const (
	otpSubject = "Your OTP Code"
	otpBody    = "Your OTP code is: %s. It is valid for 10 minutes."

	// otpRetention keeps an expired code readable for a while so a late
	// verification reports "expired" rather than "not found".
	otpRetention = domain.OTPValidity + time.Minute
)

// Service implements in.AuthService
type Service struct {
	users    out.UserRepository
	hasher   out.PasswordHasher
	tokens   out.TokenIssuer
	otps     out.OTPStore
	notifier out.Notifier

	now     func() time.Time
	newCode func() (string, error)
}

// NewService creates a new AuthService
func NewService(
	users out.UserRepository,
	hasher out.PasswordHasher,
	tokens out.TokenIssuer,
	otps out.OTPStore,
	notifier out.Notifier,
) in.AuthService {
	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		otps:     otps,
		notifier: notifier,
		now:      time.Now,
		newCode:  randomCode,
	}
}

// =============================================================================
// Accounts
// =============================================================================

func (s *Service) SignUp(ctx context.Context, req *in.SignUpRequest) error {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return apperr.MissingField("email", "Email is required")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("signup lookup: %w", err)
	}
	if existing != nil {
		return apperr.AlreadyExists("Email already exists!")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, out.ErrDuplicate) {
			return apperr.AlreadyExists("Email already exists!")
		}
		return fmt.Errorf("create user: %w", err)
	}

	logger.WithContext(ctx).WithField("user_id", user.ID).Info("user signed up")
	return nil
}

func (s *Service) SignIn(ctx context.Context, req *in.SignInRequest) (string, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return "", fmt.Errorf("signin lookup: %w", err)
	}
	if user == nil {
		return "", apperr.NotFound("User not found.")
	}
	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return "", apperr.Unauthorized("Invalid password.")
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user, req.Password)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// upgradeHash replaces a legacy hash after a successful sign-in. Failure only costs
// another attempt on the next sign-in.
func (s *Service) upgradeHash(ctx context.Context, user *domain.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		err = s.users.UpdatePassword(ctx, user.ID, hash)
	}
	if err != nil {
		logger.WithContext(ctx).WithError(err).Warn("[AuthService.SignIn] password rehash failed for user %d", user.ID)
		return
	}
	logger.WithContext(ctx).Debug("[AuthService.SignIn] legacy hash upgraded for user %d", user.ID)
}

// =============================================================================
// OTP password reset
// =============================================================================

// GenerateOTP issues a fresh code, replacing any earlier one for the email.
func (s *Service) GenerateOTP(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return apperr.MissingField("email", "Email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("otp lookup: %w", err)
	}
	if user == nil {
		return apperr.NotFound("Email not registered")
	}

	code, err := s.newCode()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	rec := &domain.OTPRecord{Email: email, Code: code, IssuedAt: s.now()}
	if err := s.otps.Put(ctx, rec, otpRetention); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	if err := s.notifier.Send(ctx, email, otpSubject, fmt.Sprintf(otpBody, code)); err != nil {
		if delErr := s.otps.Delete(ctx, email); delErr != nil {
			logger.WithContext(ctx).WithError(delErr).Warn("failed to discard undelivered otp")
		}
		return apperr.UpstreamFailure("mail", err)
	}

	metrics.OTPIssued.Inc()
	logger.WithContext(ctx).WithField("user_id", user.ID).Info("otp issued")
	return nil
}

// VerifyOTP consumes the code. Expired codes are removed and reported as such.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) error {
	email = domain.NormalizeEmail(email)

	rec, err := s.otps.Get(ctx, email)
	if err != nil {
		return fmt.Errorf("load otp: %w", err)
	}
	if rec == nil {
		return apperr.NotFound("No OTP found for this email")
	}

	if rec.Expired(s.now()) {
		if err := s.otps.Delete(ctx, email); err != nil {
			return fmt.Errorf("delete otp: %w", err)
		}
		return apperr.BadRequest("OTP expired")
	}

	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(code)), []byte(rec.Code)) != 1 {
		return apperr.BadRequest("Invalid OTP")
	}

	if err := s.otps.Delete(ctx, email); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	if err := s.otps.GrantReset(ctx, email, domain.ResetGrantTTL); err != nil {
		return fmt.Errorf("grant reset: %w", err)
	}
	return nil
}

// ResetPassword requires a grant left by a successful VerifyOTP.
func (s *Service) ResetPassword(ctx context.Context, email, password string) error {
	if len(password) < domain.MinPasswordLength {
		return apperr.BadRequest(fmt.Sprintf("Password must be at least %d characters long.", domain.MinPasswordLength))
	}
	email = domain.NormalizeEmail(email)

	granted, err := s.otps.ConsumeReset(ctx, email)
	if err != nil {
		return fmt.Errorf("consume reset grant: %w", err)
	}
	if !granted {
		return apperr.Forbidden("OTP verification required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("reset lookup: %w", err)
	}
	if user == nil {
		return apperr.NotFound("User not found.")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return apperr.NotFound("User not found.")
		}
		return fmt.Errorf("update password: %w", err)
	}

	logger.WithContext(ctx).WithField("user_id", user.ID).Info("password reset")
	return nil
}

// randomCode returns a uniformly drawn code in [100000, 999999].
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(100000+n.Int64(), 10), nil
}
