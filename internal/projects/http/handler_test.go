package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "github.com/climate-finance-tracker/cft-backend/internal/api/http"
	"github.com/climate-finance-tracker/cft-backend/internal/logging"
	"github.com/climate-finance-tracker/cft-backend/internal/projects/domain"
	"github.com/climate-finance-tracker/cft-backend/internal/projects/service"
	"github.com/climate-finance-tracker/cft-backend/internal/projects/testutil"
	"github.com/climate-finance-tracker/cft-backend/internal/uploads"
)

func httpapiMessage(err error) string {
	return httpapi.BindErrorMessage(err)
}

type envelope struct {
	Status  bool            `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type reportStub struct {
	ReportStore
	err error
}

func (r reportStub) StatusCounts(context.Context) ([]domain.NameValue, error) {
	if r.err != nil {
		return nil, r.err
	}
	return []domain.NameValue{{Name: "Active", Value: 2}}, nil
}

func (r reportStub) WashStats(context.Context) (*domain.WashStats, error) {
	return &domain.WashStats{TotalProjects: 4, WashProjects: 1, AveragePercentage: 20}, nil
}

type noFiles struct{}

func (noFiles) SavePDF(*multipart.FileHeader) (*uploads.SavedFile, error) { return nil, uploads.ErrNotPDF }
func (noFiles) Remove(string) error { return nil }

func setupRouter(t *testing.T, submissions bool, reports ReportStore) (*gin.Engine, *testutil.MemStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := testutil.NewMemStore()
	store.Names["a1"] = "LGED"
	logger := logging.Discard()

	h := New(
		service.NewProjectService(store, noFiles{}, logger),
		service.NewPendingService(store.Pending(), noFiles{}, submissions, logger),
		reports,
	)

	pass := func(c *gin.Context) { c.Next() }
	r := gin.New()
	h.RegisterProjects(r.Group("/project"), pass)
	h.RegisterPending(r.Group("/pending-project"), pass, pass)
	return r, store
}

func do(t *testing.T, r http.Handler, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return rr.Code, env
}

func TestCreateThenGetProject(t *testing.T) {
	r, _ := setupRouter(t, true, reportStub{})

	code, env := do(t, r, http.MethodPost, "/project/add-project",
		`{"title":"Flood Resilience","status":"Active","approval_fy":"2024","agency_ids":["a1"],"funding_source_ids":["f1"],"sdg_ids":[]}`)
	require.Equal(t, http.StatusCreated, code)
	require.True(t, env.Status)

	var created struct {
		ProjectID string `json:"project_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotEmpty(t, created.ProjectID)

	code, env = do(t, r, http.MethodGet, "/project/get/"+created.ProjectID, "")
	require.Equal(t, http.StatusOK, code)

	var p domain.ProjectDetail
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "Flood Resilience", p.Title)
	assert.Equal(t, "Active", p.Status)
	assert.Equal(t, []domain.Ref{{ID: "a1", Name: "LGED"}}, p.Agencies)
	assert.Equal(t, []string{"f1"}, p.FundingSourceIDs)
}

func TestCreateProject_StringAndListIDsAreEquivalent(t *testing.T) {
	r, store := setupRouter(t, true, reportStub{})

	_, env := do(t, r, http.MethodPost, "/project/add-project",
		`{"title":"A","status":"Active","approval_fy":"2024","agency_ids":["a1","a2"]}`)
	var first struct{ ProjectID string `json:"project_id"` }
	require.NoError(t, json.Unmarshal(env.Data, &first))

	_, env = do(t, r, http.MethodPost, "/project/add-project",
		`{"title":"B","status":"Active","approval_fy":"2024","agency_ids":"[\"a1\",\"a2\"]"}`)
	var second struct{ ProjectID string `json:"project_id"` }
	require.NoError(t, json.Unmarshal(env.Data, &second))

	p1, err := store.GetByID(context.Background(), first.ProjectID)
	require.NoError(t, err)
	p2, err := store.GetByID(context.Background(), second.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, p1.AgencyIDs, p2.AgencyIDs)
}

func TestCreateProject_Validation(t *testing.T) {
	r, _ := setupRouter(t, true, reportStub{})

	code, env := do(t, r, http.MethodPost, "/project/add-project", `{"status":"Active","approval_fy":"2024"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Status)
	assert.Equal(t, "title is required", env.Message)
}

func TestCreateProject_RejectsFractionalBeneficiaries(t *testing.T) {
	r, store := setupRouter(t, true, reportStub{})

	code, env := do(t, r, http.MethodPost, "/project/add-project",
		`{"title":"Flood Resilience","status":"Active","approval_fy":"2024","direct_beneficiaries":"1.9"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Status)

	all, err := store.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateProject(t *testing.T) {
	r, store := setupRouter(t, true, reportStub{})

	id, err := store.Create(context.Background(), &domain.Input{
		Fields:    domain.Fields{Title: "A", Status: "Active", ApprovalFY: "2024"},
		Relations: domain.RelationIDs{AgencyIDs: []string{"A", "B"}},
	})
	require.NoError(t, err)

	code, _ := do(t, r, http.MethodPut, "/project/update/"+id,
		`{"title":"A","status":"Completed","approval_fy":"2024","agency_ids":["B","C"]}`)
	require.Equal(t, http.StatusOK, code)

	p, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, p.AgencyIDs)
	assert.Equal(t, "Completed", p.Status)

	code, env := do(t, r, http.MethodPut, "/project/update/missing",
		`{"title":"A","status":"Active","approval_fy":"2024"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, domain.ErrNotFound.Error(), env.Message)
}

func TestDeleteProject(t *testing.T) {
	r, store := setupRouter(t, true, reportStub{})

	id, err := store.Create(context.Background(), &domain.Input{
		Fields: domain.Fields{Title: "A", Status: "Active", ApprovalFY: "2024"},
	})
	require.NoError(t, err)

	code, env := do(t, r, http.MethodDelete, "/project/delete/"+id, "")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Status)

	code, _ = do(t, r, http.MethodDelete, "/project/delete/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPendingSubmitApproveFlow(t *testing.T) {
	r, _ := setupRouter(t, true, reportStub{})

	code, env := do(t, r, http.MethodPost, "/pending-project/create",
		`{"title":"Coastal Embankment","status":"Pipeline","approval_fy":"2025","submitter_email":"citizen@example.org","agency_ids":"a1"}`)
	require.Equal(t, http.StatusCreated, code)

	var pending domain.PendingProject
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	require.NotEmpty(t, pending.ID)

	code, env = do(t, r, http.MethodPost, "/pending-project/approve/"+pending.ID, "")
	require.Equal(t, http.StatusOK, code)
	var approved struct {
		ProjectID string `json:"project_id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &approved))

	_, env = do(t, r, http.MethodGet, "/pending-project/all", "")
	var list []domain.PendingProject
	require.NoError(t, json.Unmarshal(env.Data, &list))
	for _, p := range list {
		assert.NotEqual(t, pending.ID, p.ID)
	}

	_, env = do(t, r, http.MethodGet, "/project/all-project", "")
	var projects []domain.Project
	require.NoError(t, json.Unmarshal(env.Data, &projects))
	require.Len(t, projects, 1)
	assert.Equal(t, approved.ProjectID, projects[0].ID)
	assert.Equal(t, "Coastal Embankment", projects[0].Title)

	code, _ = do(t, r, http.MethodPost, "/pending-project/approve/"+pending.ID, "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPendingReject_IsIdempotent(t *testing.T) {
	r, _ := setupRouter(t, true, reportStub{})

	code, env := do(t, r, http.MethodDelete, "/pending-project/reject/PND-00000-0000", "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Status)

	var out struct {
		Removed bool `json:"removed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.False(t, out.Removed)
}

func TestPendingSubmit_IgnoresSuppliedDocument(t *testing.T) {
	r, store := setupRouter(t, true, reportStub{})

	code, env := do(t, r, http.MethodPost, "/pending-project/create",
		`{"title":"X","status":"Pipeline","approval_fy":"2025","submitter_email":"citizen@example.org","supporting_document":"1600000000000-budget.pdf"}`)
	require.Equal(t, http.StatusCreated, code)

	var pending domain.PendingProject
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	stored, err := store.GetPending(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.SupportingDocument)

	referenced, err := store.IsReferenced(context.Background(), "1600000000000-budget.pdf")
	require.NoError(t, err)
	assert.False(t, referenced)
}

func TestPendingSubmit_Disabled(t *testing.T) {
	r, _ := setupRouter(t, false, reportStub{})

	code, env := do(t, r, http.MethodPost, "/pending-project/create",
		`{"title":"X","status":"Pipeline","approval_fy":"2025","submitter_email":"citizen@example.org"}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, domain.ErrSubmissionsDisabled.Error(), env.Message)
}

func TestPendingSubmit_RequiresEmail(t *testing.T) {
	r, _ := setupRouter(t, true, reportStub{})

	code, env := do(t, r, http.MethodPost, "/pending-project/create",
		`{"title":"X","status":"Pipeline","approval_fy":"2025"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "submitter_email is required", env.Message)
}

func TestReports(t *testing.T) {
	r, _ := setupRouter(t, true, reportStub{})

	code, env := do(t, r, http.MethodGet, "/project/status-count", "")
	require.Equal(t, http.StatusOK, code)
	var counts []domain.NameValue
	require.NoError(t, json.Unmarshal(env.Data, &counts))
	assert.Equal(t, []domain.NameValue{{Name: "Active", Value: 2}}, counts)

	code, env = do(t, r, http.MethodGet, "/project/wash-stat", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"total_projects":4,"wash_projects":1,"average_wash_percentage":20,"wash_funding_usd":0}`, string(env.Data))

	r, _ = setupRouter(t, true, reportStub{err: errors.New("db down")})
	code, env = do(t, r, http.MethodGet, "/project/status-count", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "db down", env.Message)
}
