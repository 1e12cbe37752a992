package out

import (
	"context"

	"tracker_server/core/domain"
)

// TextGenerator produces text for a single prompt.
type TextGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)
	Model() string
}
