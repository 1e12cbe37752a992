package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tracker_server/core/domain"
	"tracker_server/pkg/httputil"

	"github.com/goccy/go-json"
)

func TestAdzunaAdapter_SearchPaged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs/ca/search/2" {
			t.Errorf("path = %s, want /jobs/ca/search/2", r.URL.Path)
		}
		q := r.URL.Query()
		want := map[string]string{
			"app_id":           "id",
			"app_key":          "key",
			"what":             "golang dev",
			"max_days_old":     "3",
			"results_per_page": "20",
		}
		for k, v := range want {
			if got := q.Get(k); got != v {
				t.Errorf("query %s = %q, want %q", k, got, v)
			}
		}
		_, _ = io.WriteString(w, `{
			"count": 45,
			"results": [
				{"title": "Go Engineer", "company": {"display_name": "Acme"},
				 "location": {"display_name": "Toronto, ON"}, "created": "2024-03-01T10:00:00Z",
				 "contract_time": "full_time", "salary_min": 90000, "salary_max": 120000,
				 "redirect_url": "https://adzuna.example/1"},
				{"title": "Backend Dev"}
			]
		}`)
	}))
	defer srv.Close()

	a := NewAdzunaAdapter(AdzunaConfig{AppID: "id", AppKey: "key", BaseURL: srv.URL + "/jobs/", Client: srv.Client()})
	res, err := a.SearchPaged(context.Background(), domain.PagedSearch{Keyword: "golang dev", Page: 2, Country: "ca"})
	if err != nil {
		t.Fatalf("SearchPaged() error = %v", err)
	}

	if res.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", res.TotalPages)
	}
	if len(res.Raw) != 2 || res.Raw[0]["title"] != "Go Engineer" {
		t.Errorf("Raw = %v, want the untouched results", res.Raw)
	}

	want := domain.JobListing{
		Title:      "Go Engineer",
		Company:    "Acme",
		Location:   "Toronto, ON",
		DatePosted: "2024-03-01T10:00:00Z",
		JobType:    "full_time",
		Salary:     "90000 - 120000",
		Link:       "https://adzuna.example/1",
	}
	if res.Listings[0] != want {
		t.Errorf("Listings[0] = %+v, want %+v", res.Listings[0], want)
	}

	sparse := res.Listings[1]
	if sparse.Company != "N/A" || sparse.Salary != "Not Specified" || sparse.Link != "#" {
		t.Errorf("Listings[1] defaults = %+v", sparse)
	}
}

func TestAdzunaAdapter_MissingCountIsOnePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	a := NewAdzunaAdapter(AdzunaConfig{BaseURL: srv.URL, Client: srv.Client()})
	res, err := a.SearchPaged(context.Background(), domain.PagedSearch{Page: 1, Country: "us"})
	if err != nil {
		t.Fatalf("SearchPaged() error = %v", err)
	}
	if res.TotalPages != 1 {
		t.Errorf("TotalPages = %d, want 1", res.TotalPages)
	}
	if res.Raw == nil || res.Listings == nil {
		t.Error("empty results must be non-nil slices")
	}
}

func TestAdzunaAdapter_UpstreamError(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"client error", http.StatusUnauthorized},
		{"server error", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			a := NewAdzunaAdapter(AdzunaConfig{BaseURL: srv.URL, Client: srv.Client()})
			_, err := a.SearchPaged(context.Background(), domain.PagedSearch{Page: 1, Country: "us"})

			var se *httputil.StatusError
			if !errors.As(err, &se) || se.StatusCode != tt.status {
				t.Errorf("err = %v, want StatusError %d", err, tt.status)
			}
		})
	}
}

func TestJoobleAdapter_SearchByLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/secret" {
			t.Errorf("path = %s, want /api/secret", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
			t.Errorf("Content-Type = %q", ct)
		}

		var body joobleRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		if body.Keywords != "go" || body.Location != "Berlin" {
			t.Errorf("body = %+v", body)
		}

		_, _ = io.WriteString(w, `{"totalCount": 980, "jobs": [
			{"title": "Go Dev", "company": "Acme", "location": "Berlin", "updated": "2024-03-01",
			 "type": "Full-time", "salary": "60k", "link": "https://jooble.example/1"},
			{"title": "SRE", "salary": ""}
		]}`)
	}))
	defer srv.Close()

	a := NewJoobleAdapter(JoobleConfig{APIKey: "secret", Endpoint: srv.URL, Client: srv.Client()})
	res, err := a.SearchByLocation(context.Background(), domain.LocationSearch{Keyword: "go", Location: "Berlin"})
	if err != nil {
		t.Fatalf("SearchByLocation() error = %v", err)
	}

	if res.Total != 2 {
		t.Errorf("Total = %d, want the number of returned jobs", res.Total)
	}
	if res.Listings[0].Salary != "60k" || res.Listings[0].DatePosted != "2024-03-01" {
		t.Errorf("Listings[0] = %+v", res.Listings[0])
	}

	want := domain.JobListing{
		Title:      "SRE",
		Company:    "N/A",
		Location:   "N/A",
		DatePosted: "N/A",
		JobType:    "N/A",
		Salary:     "Not Specified",
		Link:       "#",
	}
	if res.Listings[1] != want {
		t.Errorf("Listings[1] = %+v, want %+v", res.Listings[1], want)
	}
}

func TestJoobleAdapter_NoJobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"totalCount": 0}`)
	}))
	defer srv.Close()

	a := NewJoobleAdapter(JoobleConfig{APIKey: "k", Endpoint: srv.URL, Client: srv.Client()})
	res, err := a.SearchByLocation(context.Background(), domain.LocationSearch{Keyword: "cobol"})
	if err != nil {
		t.Fatalf("SearchByLocation() error = %v", err)
	}
	if res.Total != 0 || res.Listings == nil || len(res.Listings) != 0 {
		t.Errorf("result = %+v, want an empty non-nil listing", res)
	}
}

func TestFormatSalary(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name     string
		min, max *float64
		want     string
	}{
		{"range", f(50000), f(70000), "50000 - 70000"},
		{"equal bounds", f(65000), f(65000), "65000"},
		{"min only", f(40000), nil, "40000"},
		{"max only", nil, f(80000.4), "80000"},
		{"none", nil, nil, "Not Specified"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSalary(tt.min, tt.max); got != tt.want {
				t.Errorf("formatSalary() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchAdapters_TransportErrorHidesKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	adzuna := NewAdzunaAdapter(AdzunaConfig{AppID: "id", AppKey: "adzuna-secret-key", BaseURL: srv.URL})
	_, adzunaErr := adzuna.SearchPaged(context.Background(), domain.PagedSearch{Keyword: "go", Page: 1, Country: "us"})

	jooble := NewJoobleAdapter(JoobleConfig{APIKey: "jooble-secret-key", Endpoint: srv.URL})
	_, joobleErr := jooble.SearchByLocation(context.Background(), domain.LocationSearch{Keyword: "go"})

	tests := []struct {
		name   string
		err    error
		secret string
	}{
		{"adzuna", adzunaErr, "adzuna-secret-key"},
		{"jooble", joobleErr, "jooble-secret-key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatal("expected transport error from closed server")
			}
			if strings.Contains(tt.err.Error(), tt.secret) {
				t.Errorf("error %q leaks the API key", tt.err.Error())
			}
		})
	}
}
