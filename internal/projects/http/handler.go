package http

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/climate-finance-tracker/cft-backend/internal/api/http"
	"github.com/climate-finance-tracker/cft-backend/internal/projects/domain"
	"github.com/climate-finance-tracker/cft-backend/internal/uploads"
)

type ProjectService interface {
	Create(ctx context.Context, in *domain.Input, file *multipart.FileHeader) (string, error)
	Update(ctx context.Context, id string, in *domain.Input, file *multipart.FileHeader) error
	GetAll(ctx context.Context) ([]domain.Project, error)
	GetByID(ctx context.Context, id string) (*domain.ProjectDetail, error)
	Delete(ctx context.Context, id string) error
}

type PendingService interface {
	Submit(ctx context.Context, in *domain.PendingInput, file *multipart.FileHeader) (*domain.PendingProject, error)
	List(ctx context.Context) ([]domain.PendingProject, error)
	GetByID(ctx context.Context, id string) (*domain.PendingProject, error)
	Update(ctx context.Context, id string, in *domain.Input) (*domain.PendingProject, error)
	Approve(ctx context.Context, id string) (string, error)
	Reject(ctx context.Context, id string) (bool, error)
}

// Handler bundles the dependencies for project, pending-project and report
// endpoints.
type Handler struct {
	projects ProjectService
	pending  PendingService
	reports  ReportStore
}

func New(projects ProjectService, pending PendingService, reports ReportStore) *Handler {
	return &Handler{projects: projects, pending: pending, reports: reports}
}

// writeError maps domain and upload errors to status codes. Anything
// unrecognised is a 500 carrying the error text.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		httpapi.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrMissingField),
		errors.Is(err, uploads.ErrNotPDF),
		errors.Is(err, uploads.ErrInvalidFilename):
		httpapi.Fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, uploads.ErrTooLarge):
		httpapi.Fail(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, domain.ErrSubmissionsDisabled):
		httpapi.Fail(c, http.StatusForbidden, err.Error())
	default:
		httpapi.Fail(c, http.StatusInternalServerError, err.Error())
	}
}
