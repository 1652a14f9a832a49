package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound            = errors.New("project not found")
	ErrMissingField        = errors.New("missing required field")
	ErrSubmissionsDisabled = errors.New("project submissions are disabled")
)

// MissingField wraps ErrMissingField with the offending field name.
func MissingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}

// Fields holds the scalar columns shared by projects and pending projects.
type Fields struct {
	Title                  string  `json:"title"`
	Type                   string  `json:"type"`
	Sector                 string  `json:"sector"`
	Status                 string  `json:"status"`
	ApprovalFY             string  `json:"approval_fy"`
	Beginning              string  `json:"beginning"`
	Closing                string  `json:"closing"`
	TotalCostUSD           float64 `json:"total_cost_usd"`
	GrantAmount            float64 `json:"grant_amount"`
	LoanAmount             float64 `json:"loan_amount"`
	CoFinancing            float64 `json:"co_financing"`
	Objectives             string  `json:"objectives"`
	DirectBeneficiaries    int64   `json:"direct_beneficiaries"`
	IndirectBeneficiaries  int64   `json:"indirect_beneficiaries"`
	BeneficiaryDescription string  `json:"beneficiary_description"`
	GenderInclusion        string  `json:"gender_inclusion"`
	EquityMarker           string  `json:"equity_marker"`
	AlignmentNAP           string  `json:"alignment_nap"`
	ClimateRelevanceScore  float64 `json:"climate_relevance_score"`
	SupportingDocument     string  `json:"supporting_document"`
	SupportingLink         string  `json:"supporting_link"`
}

// Validate checks the columns a project cannot be stored without.
func (f *Fields) Validate() error {
	switch {
	case strings.TrimSpace(f.Title) == "":
		return MissingField("title")
	case strings.TrimSpace(f.Status) == "":
		return MissingField("status")
	case strings.TrimSpace(f.ApprovalFY) == "":
		return MissingField("approval_fy")
	}
	return nil
}

// WashComponent is the water, sanitation and hygiene share of a project.
type WashComponent struct {
	Presence       bool    `json:"presence"`
	WashPercentage float64 `json:"wash_percentage"`
	Description    string  `json:"description"`
}

// RelationIDs lists the ids linked to a project, one slice per relation kind.
type RelationIDs struct {
	AgencyIDs             []string `json:"agency_ids"`
	ExecutingAgencyIDs    []string `json:"executing_agency_ids"`
	ImplementingEntityIDs []string `json:"implementing_entity_ids"`
	DeliveryPartnerIDs    []string `json:"delivery_partner_ids"`
	FundingSourceIDs      []string `json:"funding_source_ids"`
	SDGIDs                []string `json:"sdg_ids"`
	LocationIDs           []string `json:"location_ids"`
}

// Input is a fully parsed project write.
type Input struct {
	Fields
	Wash      *WashComponent
	Relations RelationIDs
}

// Ref is a linked entity as embedded in a project response.
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Project struct {
	ID string `json:"project_id"`
	Fields
	Wash                 *WashComponent `json:"wash_component,omitempty"`
	Agencies             []Ref          `json:"agencies"`
	ExecutingAgencies    []Ref          `json:"executing_agencies"`
	ImplementingEntities []Ref          `json:"implementing_entities"`
	DeliveryPartners     []Ref          `json:"delivery_partners"`
	FundingSources       []Ref          `json:"funding_sources"`
	SDGs                 []Ref          `json:"sdgs"`
	Locations            []Ref          `json:"locations"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// ProjectDetail adds the raw id lists used to prefill the edit form.
type ProjectDetail struct {
	Project
	RelationIDs
}

// PendingProject is a public submission awaiting review. Relation ids live on
// the row itself until approval.
type PendingProject struct {
	ID string `json:"pending_project_id"`
	Fields
	Wash *WashComponent `json:"wash_component"`
	RelationIDs
	SubmitterEmail string    `json:"submitter_email"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

type PendingInput struct {
	Input
	SubmitterEmail string
}
