package domain

type OverviewStats struct {
	TotalProjects       int     `json:"total_projects"`
	ActiveProjects      int     `json:"active_projects"`
	CompletedProjects   int     `json:"completed_projects"`
	TotalCostUSD        float64 `json:"total_cost_usd"`
	TotalGrant          float64 `json:"total_grant"`
	TotalLoan           float64 `json:"total_loan"`
	TotalCoFinancing    float64 `json:"total_co_financing"`
	DirectBeneficiaries int64   `json:"direct_beneficiaries"`
	FundingSources      int     `json:"funding_sources"`
	Agencies            int     `json:"agencies"`
}

// NameValue is one slice of a breakdown chart.
type NameValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type YearCount struct {
	Year     string `json:"year"`
	Projects int    `json:"projects"`
}

type FundingYear struct {
	Year        string  `json:"year"`
	Grant       float64 `json:"grant"`
	Loan        float64 `json:"loan"`
	CoFinancing float64 `json:"co_financing"`
}

type WashStats struct {
	TotalProjects     int     `json:"total_projects"`
	WashProjects      int     `json:"wash_projects"`
	AveragePercentage float64 `json:"average_wash_percentage"`
	WashFundingUSD    float64 `json:"wash_funding_usd"`
}

type RegionDistribution struct {
	Region    string `json:"region"`
	Total     int    `json:"total"`
	Active    int    `json:"active"`
	Completed int    `json:"completed"`
}

type DistrictDistribution struct {
	District string `json:"district"`
	Projects int    `json:"projects"`
}

type SDGDistribution struct {
	SDGNumber int    `json:"sdg_number"`
	Title     string `json:"title"`
	Projects  int    `json:"projects"`
}

// ParticipantDistribution counts projects and summed cost per agency.
type ParticipantDistribution struct {
	Name         string  `json:"name"`
	Projects     int     `json:"projects"`
	TotalCostUSD float64 `json:"total_cost_usd"`
}

type FundingSourceDistribution struct {
	Name        string  `json:"name"`
	Grant       float64 `json:"grant"`
	Loan        float64 `json:"loan"`
	CoFinancing float64 `json:"co_financing"`
	Projects    int     `json:"projects"`
}
