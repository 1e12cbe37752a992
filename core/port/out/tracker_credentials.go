package out

import "tracker_server/core/domain"

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	// NeedsRehash reports hashes produced by an older scheme.
	NeedsRehash(hash string) bool
}

// TokenIssuer issues bearer tokens for an authenticated user.
type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

// Identity is the caller resolved from a valid token.
type Identity struct {
	UserID int64
	Email  string
}

// TokenParser resolves a bearer token to the caller.
type TokenParser interface {
	Parse(token string) (*Identity, error)
}
