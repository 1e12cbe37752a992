package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"tracker_server/core/domain"
	"tracker_server/core/port/in"
	"tracker_server/core/port/out"
	"tracker_server/pkg/apperr"
)

// Service implements in.AnalyticsService. Every figure is one grouped count;
// ordering rules live here so any CountBy implementation can serve them.
type Service struct {
	users  out.UserRepository
	counts out.AnalyticsRepository
}

// NewService creates a new AnalyticsService
func NewService(users out.UserRepository, counts out.AnalyticsRepository) in.AnalyticsService {
	return &Service{users: users, counts: counts}
}

func (s *Service) UserAnalytics(ctx context.Context, email string) (*domain.UserAnalytics, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperr.MissingField("email", "Email is required")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}
	uid := &user.ID

	statuses, err := s.count(ctx, domain.CountQuery{Dimension: domain.DimensionStatus, UserID: uid})
	if err != nil {
		return nil, err
	}
	titles, err := s.count(ctx, domain.CountQuery{Dimension: domain.DimensionTitle, UserID: uid})
	if err != nil {
		return nil, err
	}
	months, err := s.count(ctx, domain.CountQuery{Dimension: domain.DimensionMonth, UserID: uid})
	if err != nil {
		return nil, err
	}
	types, err := s.count(ctx, domain.CountQuery{Dimension: domain.DimensionType, UserID: uid})
	if err != nil {
		return nil, err
	}

	result := &domain.UserAnalytics{
		Jobs:                 make([]domain.StatusCount, 0, len(statuses)),
		JobTitles:            make([]domain.TitleCount, 0, len(titles)),
		ApplicationsPerMonth: make([]domain.MonthlyCount, 0, len(months)),
		JobTypeDistribution:  make([]domain.TypeCount, 0, len(types)),
	}

	for _, g := range mergeStatuses(statuses) {
		result.Jobs = append(result.Jobs, domain.StatusCount{Status: key(g), Count: g.Count})
	}
	for _, g := range titles {
		result.JobTitles = append(result.JobTitles, domain.TitleCount{JobTitle: key(g), Count: g.Count})
	}
	sortByKey(months)
	for _, g := range months {
		result.ApplicationsPerMonth = append(result.ApplicationsPerMonth, domain.MonthlyCount{Month: g.Key, TotalApplications: g.Count})
	}
	sortByCountDesc(types)
	for _, g := range types {
		result.JobTypeDistribution = append(result.JobTypeDistribution, domain.TypeCount{JobType: key(g), TotalJobs: g.Count})
	}
	return result, nil
}

func (s *Service) GlobalAnalytics(ctx context.Context) (*domain.GlobalAnalytics, error) {
	companies, err := s.count(ctx, domain.CountQuery{Dimension: domain.DimensionCompany})
	if err != nil {
		return nil, err
	}
	titles, err := s.count(ctx, domain.CountQuery{Dimension: domain.DimensionTitle})
	if err != nil {
		return nil, err
	}
	locations, err := s.count(ctx, domain.CountQuery{Dimension: domain.DimensionLocation})
	if err != nil {
		return nil, err
	}
	outcomes, err := s.count(ctx, domain.CountQuery{
		Dimension: domain.DimensionStatus,
		Statuses:  []string{domain.StatusOffer, domain.StatusRejected},
	})
	if err != nil {
		return nil, err
	}

	sortByCountDesc(companies)
	sortByCountDesc(titles)
	sortByCountDesc(locations)

	result := &domain.GlobalAnalytics{
		CompanyData:          make([]domain.CompanyCount, 0, len(companies)),
		JobTitleData:         make([]domain.TitleCount, 0, len(titles)),
		JobLocationData:      make([]domain.LocationCount, 0, len(locations)),
		OffersRejectionsData: make([]domain.StatusCount, 0, len(outcomes)),
	}
	for _, g := range companies {
		result.CompanyData = append(result.CompanyData, domain.CompanyCount{CompanyName: key(g), Count: g.Count})
	}
	for _, g := range titles {
		result.JobTitleData = append(result.JobTitleData, domain.TitleCount{JobTitle: key(g), Count: g.Count})
	}
	for _, g := range locations {
		result.JobLocationData = append(result.JobLocationData, domain.LocationCount{JobLocation: key(g), Count: g.Count})
	}
	for _, g := range outcomes {
		result.OffersRejectionsData = append(result.OffersRejectionsData, domain.StatusCount{Status: key(g), Count: g.Count})
	}
	return result, nil
}

func (s *Service) count(ctx context.Context, q domain.CountQuery) ([]domain.GroupCount, error) {
	groups, err := s.counts.CountBy(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("count by %s: %w", q.Dimension, err)
	}
	return groups, nil
}

// mergeStatuses folds empty statuses into the default, matching how job lists display them.
func mergeStatuses(groups []domain.GroupCount) []domain.GroupCount {
	merged := make([]domain.GroupCount, 0, len(groups))
	index := make(map[string]int, len(groups))
	for _, g := range groups {
		status := domain.EffectiveStatus(key(g))
		if i, ok := index[status]; ok {
			merged[i].Count += g.Count
			continue
		}
		index[status] = len(merged)
		s := status
		merged = append(merged, domain.GroupCount{Key: &s, Count: g.Count})
	}
	return merged
}

func key(g domain.GroupCount) string {
	if g.Key == nil {
		return ""
	}
	return *g.Key
}

// sortByKey orders ascending with the NULL group first.
func sortByKey(groups []domain.GroupCount) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Key, groups[j].Key
		if a == nil || b == nil {
			return a == nil && b != nil
		}
		return *a < *b
	})
}

// sortByCountDesc keeps the storage order for equal counts.
func sortByCountDesc(groups []domain.GroupCount) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
}
