package domain

import "time"

const (
	// OTPValidity is how long a code can be verified after issuance.
	OTPValidity = 600 * time.Second
	// ResetGrantTTL bounds the window between verification and password reset.
	ResetGrantTTL = 10 * time.Minute
	// MinPasswordLength applies to signup and password reset.
	MinPasswordLength = 6
)

// OTPRecord is the single active code for an email.
type OTPRecord struct {
	Email    string    `json:"email"`
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issued_at"`
}

// Expired reports whether the record is past OTPValidity at now.
func (r *OTPRecord) Expired(now time.Time) bool {
	return now.Sub(r.IssuedAt) > OTPValidity
}
