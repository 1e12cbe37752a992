package out

import (
	"context"

	"tracker_server/core/domain"
)

// AnalyticsRepository runs read-only grouped counts.
type AnalyticsRepository interface {
	CountBy(ctx context.Context, q domain.CountQuery) ([]domain.GroupCount, error)
}
