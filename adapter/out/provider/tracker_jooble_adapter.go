package provider

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tracker_server/core/domain"
	"tracker_server/pkg/httputil"
	"tracker_server/pkg/metrics"
	"tracker_server/pkg/resilience"

	"github.com/goccy/go-json"
)

// JoobleConfig holds Jooble credentials. Endpoint overrides https://<Host>.
type JoobleConfig struct {
	APIKey   string
	Host     string
	Endpoint string
	Client   *http.Client
}

// JoobleAdapter implements out.LocationJobSearcher.
type JoobleAdapter struct {
	endpoint string
	apiKey   string
	client   *http.Client
	cb       *resilience.Breaker
}

// NewJoobleAdapter creates a new Jooble adapter.
func NewJoobleAdapter(cfg JoobleConfig) *JoobleAdapter {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://" + cfg.Host
	}
	client := cfg.Client
	if client == nil {
		client = httputil.SearchClient()
	}
	return &JoobleAdapter{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   cfg.APIKey,
		client:   client,
		cb:       resilience.NewBreaker(resilience.DefaultConfig("jooble-api")),
	}
}

type joobleRequest struct {
	Keywords string `json:"keywords"`
	Location string `json:"location"`
}

type joobleJob struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
	Updated  string `json:"updated"`
	Type     string `json:"type"`
	Salary   string `json:"salary"`
	Link     string `json:"link"`
}

type joobleResponse struct {
	TotalCount int         `json:"totalCount"`
	Jobs       []joobleJob `json:"jobs"`
}

// SearchByLocation posts the query. Total is the number of returned jobs,
// not Jooble's totalCount.
func (a *JoobleAdapter) SearchByLocation(ctx context.Context, q domain.LocationSearch) (*domain.SearchResult, error) {
	body, err := json.Marshal(joobleRequest{Keywords: q.Keyword, Location: q.Location})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, a.endpoint+"/api/"+url.PathEscape(a.apiKey), bytes.NewReader(body))
	if err != nil {
		return nil, httputil.RedactURL(err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp joobleResponse
	start := time.Now()
	err = a.cb.Execute(func() error {
		return markClientErrors(httputil.DoJSON(ctx, a.client, req, &resp))
	})
	metrics.RecordUpstream("jooble", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("jooble search: %w", err)
	}

	listings := make([]domain.JobListing, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		listings = append(listings, domain.JobListing{
			Title:      orDefault(strings.TrimSpace(j.Title), notAvailable),
			Company:    orDefault(strings.TrimSpace(j.Company), notAvailable),
			Location:   orDefault(strings.TrimSpace(j.Location), notAvailable),
			DatePosted: orDefault(j.Updated, notAvailable),
			JobType:    orDefault(j.Type, notAvailable),
			Salary:     orDefault(strings.TrimSpace(j.Salary), salaryNotSpecified),
			Link:       orDefault(j.Link, missingLink),
		})
	}

	return &domain.SearchResult{
		Listings: listings,
		Total:    len(listings),
	}, nil
}
