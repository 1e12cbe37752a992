package out

import "context"

// Notifier delivers a plain-text message to one address.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}
