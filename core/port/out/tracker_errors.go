package out

import "errors"

// Errors returned by outbound adapters. Services translate them into apperr values.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
)
