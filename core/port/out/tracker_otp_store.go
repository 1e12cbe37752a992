package out

import (
	"context"
	"time"

	"tracker_server/core/domain"
)

// OTPStore is a TTL key-value store keyed by email.
// Get returns (nil, nil) for a missing or purged record.
type OTPStore interface {
	Put(ctx context.Context, rec *domain.OTPRecord, ttl time.Duration) error
	Get(ctx context.Context, email string) (*domain.OTPRecord, error)
	Delete(ctx context.Context, email string) error

	// GrantReset marks the email as verified for a password reset.
	GrantReset(ctx context.Context, email string, ttl time.Duration) error
	// ConsumeReset removes the grant and reports whether it existed.
	ConsumeReset(ctx context.Context, email string) (bool, error)
}
