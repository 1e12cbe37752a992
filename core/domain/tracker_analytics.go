package domain

// CountDimension names a column analytics can group by.
type CountDimension string

const (
	DimensionStatus   CountDimension = "status"
	DimensionTitle    CountDimension = "job_title"
	DimensionMonth    CountDimension = "month"
	DimensionType     CountDimension = "job_type"
	DimensionCompany  CountDimension = "company_name"
	DimensionLocation CountDimension = "job_location"
)

// CountQuery is a single GROUP BY ... COUNT(*) over applications ⋈ postings.
type CountQuery struct {
	Dimension CountDimension
	UserID    *int64   // nil means every user
	Statuses  []string // restricts to these statuses when non-empty
}

// GroupCount is one group. Key is nil for a NULL group value (a month of
// an application without date).
type GroupCount struct {
	Key   *string
	Count int
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type TitleCount struct {
	JobTitle string `json:"job_title"`
	Count    int    `json:"count"`
}

type MonthlyCount struct {
	Month             *string `json:"month"`
	TotalApplications int     `json:"total_applications"`
}

type TypeCount struct {
	JobType   string `json:"job_type"`
	TotalJobs int    `json:"total_jobs"`
}

type CompanyCount struct {
	CompanyName string `json:"company_name"`
	Count       int    `json:"count"`
}

type LocationCount struct {
	JobLocation string `json:"job_location"`
	Count       int    `json:"count"`
}

// UserAnalytics is the per-user dashboard payload.
type UserAnalytics struct {
	Jobs                 []StatusCount  `json:"jobs"`
	JobTitles            []TitleCount   `json:"job_titles"`
	ApplicationsPerMonth []MonthlyCount `json:"applications_per_month"`
	JobTypeDistribution  []TypeCount    `json:"job_type_distribution"`
}

// GlobalAnalytics is the cross-user dashboard payload.
type GlobalAnalytics struct {
	CompanyData          []CompanyCount  `json:"company_data"`
	JobTitleData         []TitleCount    `json:"job_title_data"`
	JobLocationData      []LocationCount `json:"job_location_data"`
	OffersRejectionsData []StatusCount   `json:"offers_rejections_data"`
}
