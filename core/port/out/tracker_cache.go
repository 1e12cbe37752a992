package out

import (
	"context"
	"time"
)

// Cache defines the outbound port for JSON caching. GetJSON reports a miss
// with (false, nil).
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}
