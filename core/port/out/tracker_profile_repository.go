package out

import (
	"context"

	"tracker_server/core/domain"
)

// ProfileRepository reads the profile join and writes profile updates atomically.
type ProfileRepository interface {
	// ProfileRows returns every row of the four-table outer join for the email.
	ProfileRows(ctx context.Context, email string) ([]domain.ProfileJoinRow, error)

	// ReplaceProfile applies the update in one transaction: resolve the user by
	// OriginalEmail, rename, update scalars, upsert profile, replace children.
	ReplaceProfile(ctx context.Context, update *domain.ProfileUpdate) error
}
