package domain

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrNameRequired = errors.New("name is required")
)

// Entity is a name-keyed participant: agency, executing agency, implementing
// entity, delivery partner or funding source.
type Entity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FundingSource carries totals summed from linked projects at query time.
// They are never stored on the funding source row.
type FundingSource struct {
	Entity
	GrantAmount  float64 `json:"grant_amount"`
	LoanAmount   float64 `json:"loan_amount"`
	CoFinancing  float64 `json:"co_financing"`
	TotalCost    float64 `json:"total_cost_usd"`
	ProjectCount int     `json:"project_count"`
}

type SDG struct {
	ID        string    `json:"id"`
	Number    int       `json:"sdg_number"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Location struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Region   string  `json:"region"`
	District *string `json:"district,omitempty"`
}
