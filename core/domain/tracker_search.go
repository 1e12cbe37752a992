package domain

// ResultsPerPage is the page size requested from the paged provider.
const ResultsPerPage = 20

// Supported paged-search countries.
var SearchCountries = map[string]bool{"us": true, "ca": true}

// JobListing is the provider-neutral shape of a search hit.
type JobListing struct {
	Title      string `json:"title"`
	Company    string `json:"company"`
	Location   string `json:"location"`
	DatePosted string `json:"date_posted"`
	JobType    string `json:"job_type"`
	Salary     string `json:"salary"`
	Link       string `json:"link"`
}

type PagedSearch struct {
	Keyword string
	Page    int
	Country string
}

type LocationSearch struct {
	Keyword  string
	Location string
}

// SearchResult carries normalized listings and, for providers whose raw
// payload clients still render, the untouched results.
type SearchResult struct {
	Listings   []JobListing     `json:"listings"`
	Raw        []map[string]any `json:"raw,omitempty"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
}

// TotalPagesFor rounds count up to whole pages of ResultsPerPage.
func TotalPagesFor(count int) int {
	if count <= 0 {
		return 0
	}
	return (count + ResultsPerPage - 1) / ResultsPerPage
}
