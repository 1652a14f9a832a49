package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	httpapi "github.com/climate-finance-tracker/cft-backend/internal/api/http"
	"github.com/climate-finance-tracker/cft-backend/internal/projects/domain"
)

// IDList is a list of relation ids. It decodes from a JSON array, a
// JSON-encoded array string or a comma separated string, and always holds
// trimmed, de-duplicated, non-empty ids.
type IDList []string

func (l *IDList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = IDList{}
		return nil
	}

	var raw []any
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if !strings.HasPrefix(s, "[") {
			*l = normalizeIDs(strings.Split(s, ","))
			return nil
		}
		b = []byte(s)
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("id list must be an array of ids: %w", err)
	}

	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		switch x := v.(type) {
		case string:
			ids = append(ids, x)
		case float64:
			ids = append(ids, strconv.FormatFloat(x, 'f', -1, 64))
		default:
			return fmt.Errorf("id list must contain strings, got %T", v)
		}
	}
	*l = normalizeIDs(ids)
	return nil
}

func normalizeIDs(in []string) IDList {
	out := make(IDList, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, id := range in {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// FlexString accepts a JSON string or number ("2024" or 2024).
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(strings.TrimSpace(v))
		return nil
	}
	*s = FlexString(b)
	return nil
}

// FlexFloat accepts a JSON number or a numeric string; "" is zero.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	s, err := unquote(b)
	if err != nil || s == "" {
		*f = 0
		return err
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return fmt.Errorf("%q is not a number", s)
	}
	*f = FlexFloat(v)
	return nil
}

// FlexInt accepts a JSON integer or an integer string; "" is zero.
type FlexInt int64

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	s, err := unquote(b)
	if err != nil || s == "" {
		*n = 0
		return err
	}
	v, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	if err != nil {
		return fmt.Errorf("%q is not a whole number", s)
	}
	*n = FlexInt(v)
	return nil
}

// FlexBool accepts true/false, "true"/"false", "yes"/"no", 1/0.
type FlexBool bool

func (v *FlexBool) UnmarshalJSON(b []byte) error {
	s, err := unquote(b)
	if err != nil {
		return err
	}
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		*v = true
	case "", "false", "0", "no", "off":
		*v = false
	default:
		return fmt.Errorf("%q is not a boolean", s)
	}
	return nil
}

func unquote(b []byte) (string, error) {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return "", nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	return string(b), nil
}

type washRequest struct {
	Presence       FlexBool  `json:"presence"`
	WashPercentage FlexFloat `json:"wash_percentage"`
	Description    string    `json:"description"`
}

// washInput decodes a WASH object, either inline or JSON-encoded in a
// multipart form value.
type washInput struct {
	washRequest
}

func (w *washInput) UnmarshalJSON(b []byte) error {
	s, err := unquote(b)
	if err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), &w.washRequest)
}

type projectRequest struct {
	Title                  string     `json:"title" binding:"required"`
	Type                   string     `json:"type"`
	Sector                 string     `json:"sector"`
	Status                 string     `json:"status" binding:"required"`
	ApprovalFY             FlexString `json:"approval_fy" binding:"required"`
	Beginning              FlexString `json:"beginning"`
	Closing                FlexString `json:"closing"`
	TotalCostUSD           FlexFloat  `json:"total_cost_usd"`
	GrantAmount            FlexFloat  `json:"grant_amount"`
	LoanAmount             FlexFloat  `json:"loan_amount"`
	CoFinancing            FlexFloat  `json:"co_financing"`
	Objectives             string     `json:"objectives"`
	DirectBeneficiaries    FlexInt    `json:"direct_beneficiaries"`
	IndirectBeneficiaries  FlexInt    `json:"indirect_beneficiaries"`
	BeneficiaryDescription string     `json:"beneficiary_description"`
	GenderInclusion        string     `json:"gender_inclusion"`
	EquityMarker           string     `json:"equity_marker"`
	AlignmentNAP           string     `json:"alignment_nap"`
	ClimateRelevanceScore  FlexFloat  `json:"climate_relevance_score"`
	SupportingLink         string     `json:"supporting_link"`

	WashComponent *washInput `json:"wash_component"`

	AgencyIDs             IDList `json:"agency_ids"`
	ExecutingAgencyIDs    IDList `json:"executing_agency_ids"`
	ImplementingEntityIDs IDList `json:"implementing_entity_ids"`
	DeliveryPartnerIDs    IDList `json:"delivery_partner_ids"`
	FundingSourceIDs      IDList `json:"funding_source_ids"`
	SDGIDs                IDList `json:"sdg_ids"`
	LocationIDs           IDList `json:"location_ids"`

	SubmitterEmail string `json:"submitter_email" binding:"omitempty,email"`
}

func (r *projectRequest) toInput() *domain.Input {
	in := &domain.Input{
		Fields: domain.Fields{
			Title:                  strings.TrimSpace(r.Title),
			Type:                   r.Type,
			Sector:                 r.Sector,
			Status:                 strings.TrimSpace(r.Status),
			ApprovalFY:             string(r.ApprovalFY),
			Beginning:              string(r.Beginning),
			Closing:                string(r.Closing),
			TotalCostUSD:           float64(r.TotalCostUSD),
			GrantAmount:            float64(r.GrantAmount),
			LoanAmount:             float64(r.LoanAmount),
			CoFinancing:            float64(r.CoFinancing),
			Objectives:             r.Objectives,
			DirectBeneficiaries:    int64(r.DirectBeneficiaries),
			IndirectBeneficiaries:  int64(r.IndirectBeneficiaries),
			BeneficiaryDescription: r.BeneficiaryDescription,
			GenderInclusion:        r.GenderInclusion,
			EquityMarker:           r.EquityMarker,
			AlignmentNAP:           r.AlignmentNAP,
			ClimateRelevanceScore:  float64(r.ClimateRelevanceScore),
			SupportingLink:         r.SupportingLink,
		},
		Relations: domain.RelationIDs{
			AgencyIDs:             ids(r.AgencyIDs),
			ExecutingAgencyIDs:    ids(r.ExecutingAgencyIDs),
			ImplementingEntityIDs: ids(r.ImplementingEntityIDs),
			DeliveryPartnerIDs:    ids(r.DeliveryPartnerIDs),
			FundingSourceIDs:      ids(r.FundingSourceIDs),
			SDGIDs:                ids(r.SDGIDs),
			LocationIDs:           ids(r.LocationIDs),
		},
	}
	if w := r.WashComponent; w != nil {
		in.Wash = &domain.WashComponent{
			Presence:       bool(w.Presence),
			WashPercentage: float64(w.WashPercentage),
			Description:    strings.TrimSpace(w.Description),
		}
	}
	return in
}

func ids(l IDList) []string {
	if l == nil {
		return []string{}
	}
	return []string(l)
}

// fileFields are the multipart keys accepted for the supporting PDF.
var fileFields = []string{"file", "supporting_document"}

// bindProject decodes a JSON or multipart project body into one request
// shape and validates it. The uploaded file, if any, is returned alongside.
func bindProject(c *gin.Context) (*projectRequest, *multipart.FileHeader, error) {
	var req projectRequest

	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, nil, err
		}
		return &req, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	raw, err := formToJSON(form.Value)
	if err != nil {
		return nil, nil, err
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, nil, err
	}
	if err := httpapi.Validate(&req); err != nil {
		return nil, nil, err
	}

	for _, key := range fileFields {
		if files := form.File[key]; len(files) > 0 {
			return &req, files[0], nil
		}
	}
	return &req, nil, nil
}

// formToJSON turns form values into a JSON object. Repeated keys and keys
// written as "agency_ids[]" become arrays.
func formToJSON(values map[string][]string) ([]byte, error) {
	obj := make(map[string]any, len(values))
	for key, vs := range values {
		name := strings.TrimSuffix(key, "[]")
		if len(vs) == 1 && name == key {
			obj[name] = vs[0]
			continue
		}
		obj[name] = append(toAny(obj[name]), toAnySlice(vs)...)
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, errors.New("invalid form values")
	}
	return b, nil
}

func toAny(v any) []any {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		return x
	default:
		return []any{x}
	}
}

func toAnySlice(vs []string) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}
