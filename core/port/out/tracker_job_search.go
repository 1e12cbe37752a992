package out

import (
	"context"

	"tracker_server/core/domain"
)

// PagedJobSearcher searches a provider that pages by number and country.
type PagedJobSearcher interface {
	SearchPaged(ctx context.Context, q domain.PagedSearch) (*domain.SearchResult, error)
}

// LocationJobSearcher searches a provider that filters by free-text location.
type LocationJobSearcher interface {
	SearchByLocation(ctx context.Context, q domain.LocationSearch) (*domain.SearchResult, error)
}
