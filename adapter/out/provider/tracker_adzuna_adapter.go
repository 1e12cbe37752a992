// Package provider implements the job-search provider adapters.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tracker_server/core/domain"
	"tracker_server/pkg/httputil"
	"tracker_server/pkg/metrics"
	"tracker_server/pkg/resilience"
)

const (
	adzunaMaxDaysOld   = 3
	notAvailable       = "N/A"
	salaryNotSpecified = "Not Specified"
	missingLink        = "#"
)

// AdzunaConfig holds Adzuna credentials.
type AdzunaConfig struct {
	AppID   string
	AppKey  string
	BaseURL string // e.g. https://api.adzuna.com/v1/api/jobs
	Client  *http.Client
}

// AdzunaAdapter implements out.PagedJobSearcher.
type AdzunaAdapter struct {
	cfg    AdzunaConfig
	client *http.Client
	cb     *resilience.Breaker
}

// NewAdzunaAdapter creates a new Adzuna adapter.
func NewAdzunaAdapter(cfg AdzunaConfig) *AdzunaAdapter {
	client := cfg.Client
	if client == nil {
		client = httputil.SearchClient()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &AdzunaAdapter{
		cfg:    cfg,
		client: client,
		cb:     resilience.NewBreaker(resilience.DefaultConfig("adzuna-api")),
	}
}

type adzunaResponse struct {
	Count   *int             `json:"count"`
	Results []map[string]any `json:"results"`
}

// SearchPaged fetches one page. The raw results are returned alongside the
// normalized listings because existing clients render Adzuna's own fields.
func (a *AdzunaAdapter) SearchPaged(ctx context.Context, q domain.PagedSearch) (*domain.SearchResult, error) {
	endpoint := fmt.Sprintf("%s/%s/search/%d", a.cfg.BaseURL, url.PathEscape(q.Country), q.Page)

	params := url.Values{}
	params.Set("app_id", a.cfg.AppID)
	params.Set("app_key", a.cfg.AppKey)
	params.Set("what", q.Keyword)
	params.Set("max_days_old", strconv.Itoa(adzunaMaxDaysOld))
	params.Set("results_per_page", strconv.Itoa(domain.ResultsPerPage))
	params.Set("content-type", "application/json")

	req, err := http.NewRequest(http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, httputil.RedactURL(err)
	}

	var resp adzunaResponse
	start := time.Now()
	err = a.cb.Execute(func() error {
		return markClientErrors(httputil.DoJSON(ctx, a.client, req, &resp))
	})
	metrics.RecordUpstream("adzuna", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("adzuna search: %w", err)
	}

	// A response without count is treated as a single page.
	count := 1
	if resp.Count != nil {
		count = *resp.Count
	}

	raw := resp.Results
	if raw == nil {
		raw = []map[string]any{}
	}
	listings := make([]domain.JobListing, 0, len(raw))
	for _, r := range raw {
		listings = append(listings, adzunaListing(r))
	}

	return &domain.SearchResult{
		Listings:   listings,
		Raw:        raw,
		Total:      count,
		TotalPages: domain.TotalPagesFor(count),
	}, nil
}

func adzunaListing(r map[string]any) domain.JobListing {
	return domain.JobListing{
		Title:      orDefault(stringField(r, "title"), notAvailable),
		Company:    orDefault(stringField(r, "company", "display_name"), notAvailable),
		Location:   orDefault(stringField(r, "location", "display_name"), notAvailable),
		DatePosted: orDefault(stringField(r, "created"), notAvailable),
		JobType:    orDefault(stringField(r, "contract_time"), notAvailable),
		Salary:     formatSalary(numberField(r, "salary_min"), numberField(r, "salary_max")),
		Link:       orDefault(stringField(r, "redirect_url"), missingLink),
	}
}

// stringField walks nested objects along path and returns the string at the end.
func stringField(m map[string]any, path ...string) string {
	var cur any = m
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = obj[key]
	}
	s, _ := cur.(string)
	return strings.TrimSpace(s)
}

func numberField(m map[string]any, key string) *float64 {
	switch v := m[key].(type) {
	case float64:
		return &v
	case int64:
		f := float64(v)
		return &f
	case uint64:
		f := float64(v)
		return &f
	}
	return nil
}

func formatSalary(min, max *float64) string {
	switch {
	case min != nil && max != nil && *min != *max:
		return fmt.Sprintf("%.0f - %.0f", *min, *max)
	case min != nil:
		return fmt.Sprintf("%.0f", *min)
	case max != nil:
		return fmt.Sprintf("%.0f", *max)
	default:
		return salaryNotSpecified
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// markClientErrors keeps caller-caused 4xx responses from tripping the breaker.
func markClientErrors(err error) error {
	var se *httputil.StatusError
	if errors.As(err, &se) && se.ClientSide() {
		return resilience.ClientError(err)
	}
	return err
}
