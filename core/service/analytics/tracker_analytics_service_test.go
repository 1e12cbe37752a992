package analytics

import (
	"context"
	"reflect"
	"sort"
	"testing"

	"tracker_server/core/domain"
	"tracker_server/pkg/apperr"
)

type fakeUsers map[string]*domain.User

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return f[email], nil
}
func (f fakeUsers) Create(context.Context, *domain.User) error          { return nil }
func (f fakeUsers) UpdatePassword(context.Context, int64, string) error { return nil }

type row struct {
	userID  int64
	status  string
	month   *string
	title   string
	jobType string
	company string
	place   string
}

// fakeCounts groups an in-memory applications ⋈ postings table.
type fakeCounts struct{ rows []row }

func (f *fakeCounts) CountBy(_ context.Context, q domain.CountQuery) ([]domain.GroupCount, error) {
	allowed := map[string]bool{}
	for _, s := range q.Statuses {
		allowed[s] = true
	}

	var order []string
	var nullCount int
	counts := map[string]int{}
	for _, r := range f.rows {
		if q.UserID != nil && r.userID != *q.UserID {
			continue
		}
		if len(allowed) > 0 && !allowed[r.status] {
			continue
		}
		var k *string
		switch q.Dimension {
		case domain.DimensionStatus:
			k = &r.status
		case domain.DimensionTitle:
			k = &r.title
		case domain.DimensionMonth:
			k = r.month
		case domain.DimensionType:
			k = &r.jobType
		case domain.DimensionCompany:
			k = &r.company
		case domain.DimensionLocation:
			k = &r.place
		}
		if k == nil {
			nullCount++
			continue
		}
		if _, ok := counts[*k]; !ok {
			order = append(order, *k)
		}
		counts[*k]++
	}

	groups := make([]domain.GroupCount, 0, len(order)+1)
	for _, k := range order {
		k := k
		groups = append(groups, domain.GroupCount{Key: &k, Count: counts[k]})
	}
	if nullCount > 0 {
		groups = append(groups, domain.GroupCount{Count: nullCount})
	}
	return groups, nil
}

func month(s string) *string { return &s }

func TestGlobalAnalytics_OffersRejections(t *testing.T) {
	counts := &fakeCounts{rows: []row{
		{userID: 1, status: "Offer", company: "Acme"},
		{userID: 2, status: "Offer", company: "Acme"},
		{userID: 1, status: "Rejected", company: "Globex"},
		{userID: 3, status: "Applied", company: "Initech"},
	}}
	svc := NewService(fakeUsers{}, counts)

	got, err := svc.GlobalAnalytics(context.Background())
	if err != nil {
		t.Fatalf("GlobalAnalytics() error = %v", err)
	}

	outcomes := append([]domain.StatusCount(nil), got.OffersRejectionsData...)
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Status < outcomes[j].Status })
	want := []domain.StatusCount{{Status: "Offer", Count: 2}, {Status: "Rejected", Count: 1}}
	if !reflect.DeepEqual(outcomes, want) {
		t.Errorf("OffersRejectionsData = %+v, want %+v", outcomes, want)
	}

	if len(got.CompanyData) != 3 || got.CompanyData[0] != (domain.CompanyCount{CompanyName: "Acme", Count: 2}) {
		t.Errorf("CompanyData = %+v, want Acme first", got.CompanyData)
	}
}

func TestUserAnalytics_Ordering(t *testing.T) {
	counts := &fakeCounts{rows: []row{
		{userID: 1, status: "Applied", month: month("2024-03"), jobType: "Contract"},
		{userID: 1, status: "", month: month("2024-01"), jobType: "Full-time"},
		{userID: 1, status: "Interview", month: month("2024-03"), jobType: "Full-time"},
		{userID: 1, status: "Applied", month: nil, jobType: "Full-time"},
		{userID: 2, status: "Offer", month: month("2023-12"), jobType: "Internship"},
	}}
	svc := NewService(fakeUsers{"a@x.com": {ID: 1}}, counts)

	got, err := svc.UserAnalytics(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("UserAnalytics() error = %v", err)
	}

	var months []string
	for _, m := range got.ApplicationsPerMonth {
		if m.Month == nil {
			months = append(months, "<nil>")
			continue
		}
		months = append(months, *m.Month)
	}
	if want := []string{"<nil>", "2024-01", "2024-03"}; !reflect.DeepEqual(months, want) {
		t.Errorf("months = %v, want %v", months, want)
	}

	if got.JobTypeDistribution[0] != (domain.TypeCount{JobType: "Full-time", TotalJobs: 3}) {
		t.Errorf("JobTypeDistribution = %+v, want Full-time first", got.JobTypeDistribution)
	}

	statuses := map[string]int{}
	for _, s := range got.Jobs {
		statuses[s.Status] = s.Count
	}
	if want := map[string]int{"Applied": 3, "Interview": 1}; !reflect.DeepEqual(statuses, want) {
		t.Errorf("Jobs = %v, want %v", statuses, want)
	}
}

func TestUserAnalytics_Errors(t *testing.T) {
	svc := NewService(fakeUsers{}, &fakeCounts{})

	if _, err := svc.UserAnalytics(context.Background(), " "); !apperr.Is(err, apperr.CodeMissingField) {
		t.Errorf("blank email error = %v", err)
	}
	if _, err := svc.UserAnalytics(context.Background(), "ghost@x.com"); !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("unknown user error = %v", err)
	}
}

func TestUserAnalytics_EmptyListsSerializeAsArrays(t *testing.T) {
	svc := NewService(fakeUsers{"a@x.com": {ID: 1}}, &fakeCounts{})

	got, err := svc.UserAnalytics(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("UserAnalytics() error = %v", err)
	}
	if got.Jobs == nil || got.JobTitles == nil || got.ApplicationsPerMonth == nil || got.JobTypeDistribution == nil {
		t.Errorf("nil list in %+v", got)
	}
}
