package out

import (
	"context"

	"tracker_server/core/domain"
)

// DocumentArchive stores generated resumes and cover letters.
type DocumentArchive interface {
	Save(ctx context.Context, doc *domain.GeneratedDocument) error
	ListByEmail(ctx context.Context, email string, limit int) ([]domain.GeneratedDocument, error)
}
