package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tracker_server/core/domain"
	"tracker_server/core/port/in"
	"tracker_server/core/port/out"
	"tracker_server/pkg/apperr"
	"tracker_server/pkg/logger"
)

const defaultCountry = "us"

// Service implements in.SearchService. Results are cached per query when a
// cache is configured; a cache failure never fails the search.
type Service struct {
	adzuna   out.PagedJobSearcher
	jooble   out.LocationJobSearcher
	cache    out.Cache
	cacheTTL time.Duration
}

// NewService creates a new SearchService. cache may be nil.
func NewService(adzuna out.PagedJobSearcher, jooble out.LocationJobSearcher, cache out.Cache, cacheTTL time.Duration) in.SearchService {
	return &Service{adzuna: adzuna, jooble: jooble, cache: cache, cacheTTL: cacheTTL}
}

func (s *Service) SearchAdzuna(ctx context.Context, q *in.JobSearchQuery) (*domain.SearchResult, error) {
	country := strings.ToLower(strings.TrimSpace(q.Country))
	if country == "" {
		country = defaultCountry
	}
	if !domain.SearchCountries[country] {
		return nil, apperr.BadRequest("Invalid country. Choose 'us' or 'ca'.")
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	query := domain.PagedSearch{Keyword: strings.TrimSpace(q.Keyword), Page: page, Country: country}

	key := fmt.Sprintf("search:adzuna:%s:%d:%s", country, page, strings.ToLower(query.Keyword))
	return s.cached(ctx, key, "adzuna", func() (*domain.SearchResult, error) {
		return s.adzuna.SearchPaged(ctx, query)
	})
}

func (s *Service) SearchJooble(ctx context.Context, q *in.JoobleSearchQuery) (*domain.SearchResult, error) {
	query := domain.LocationSearch{
		Keyword:  strings.TrimSpace(q.Keyword),
		Location: strings.TrimSpace(q.Location),
	}
	if query.Keyword == "" {
		return nil, apperr.MissingField("keyword", "Keyword is required")
	}

	key := fmt.Sprintf("search:jooble:%s:%s", strings.ToLower(query.Keyword), strings.ToLower(query.Location))
	return s.cached(ctx, key, "jooble", func() (*domain.SearchResult, error) {
		return s.jooble.SearchByLocation(ctx, query)
	})
}

func (s *Service) cached(ctx context.Context, key, provider string, fetch func() (*domain.SearchResult, error)) (*domain.SearchResult, error) {
	log := logger.WithContext(ctx).WithField("provider", provider)

	if s.cache != nil {
		var hit domain.SearchResult
		found, err := s.cache.GetJSON(ctx, key, &hit)
		if err != nil {
			log.WithError(err).Warn("search cache read failed")
		} else if found {
			return &hit, nil
		}
	}

	result, err := fetch()
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, apperr.UpstreamFailure(provider, err)
	}
	if result.Listings == nil {
		result.Listings = []domain.JobListing{}
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.SetJSON(ctx, key, result, s.cacheTTL); err != nil {
			log.WithError(err).Warn("search cache write failed")
		}
	}
	return result, nil
}
