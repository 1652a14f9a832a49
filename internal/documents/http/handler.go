package http

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	httpapi "github.com/climate-finance-tracker/cft-backend/internal/api/http"
	"github.com/climate-finance-tracker/cft-backend/internal/documents/domain"
	"github.com/climate-finance-tracker/cft-backend/internal/uploads"
)

type Service interface {
	Create(ctx context.Context, meta domain.Metadata, fh *multipart.FileHeader) (*domain.Document, error)
	GetAll(ctx context.Context) ([]domain.Document, error)
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	Update(ctx context.Context, id string, meta domain.Metadata, fh *multipart.FileHeader) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
	Submit(ctx context.Context, meta domain.Metadata, email string, fh *multipart.FileHeader) (*domain.PendingDocument, error)
	ListPending(ctx context.Context) ([]domain.PendingDocument, error)
	GetPending(ctx context.Context, id string) (*domain.PendingDocument, error)
	Approve(ctx context.Context, id string) (*domain.Document, error)
	Reject(ctx context.Context, id string) (bool, error)
}

type Handler struct {
	svc Service
}

func New(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register attaches /document-repository routes.
func (h *Handler) Register(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	rg.POST("/add", admin, h.add)
	rg.GET("/all", h.list)
	rg.GET("/get/:id", h.get)
	rg.PUT("/update/:id", admin, h.update)
	rg.DELETE("/delete/:id", admin, h.delete)
}

// RegisterPending attaches /pending-document-repository routes. Only add is
// public and it runs behind limit.
func (h *Handler) RegisterPending(rg *gin.RouterGroup, admin, limit gin.HandlerFunc) {
	rg.POST("/add", limit, h.submit)
	rg.GET("/all", admin, h.listPending)
	rg.GET("/get/:id", admin, h.getPending)
	rg.POST("/approve/:id", admin, h.approve)
	rg.DELETE("/reject/:id", admin, h.reject)
}

type documentReq struct {
	Category       string `form:"category" json:"category" binding:"required"`
	Heading        string `form:"heading" json:"heading" binding:"required"`
	SubHeading     string `form:"sub_heading" json:"sub_heading"`
	Agency         string `form:"agency" json:"agency"`
	SubmitterEmail string `form:"submitter_email" json:"submitter_email" binding:"omitempty,email"`
}

func (r *documentReq) metadata() domain.Metadata {
	return domain.Metadata{
		Category:   strings.TrimSpace(r.Category),
		Heading:    strings.TrimSpace(r.Heading),
		SubHeading: strings.TrimSpace(r.SubHeading),
		Agency:     strings.TrimSpace(r.Agency),
	}
}

// bind reads the metadata fields and the optional "file" part.
func bind(c *gin.Context) (*documentReq, *multipart.FileHeader, bool) {
	var req documentReq
	if err := c.ShouldBind(&req); err != nil {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.BindErrorMessage(err))
		return nil, nil, false
	}

	fh, err := c.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		httpapi.Fail(c, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}
	return &req, fh, true
}

func (h *Handler) add(c *gin.Context) {
	req, fh, ok := bind(c)
	if !ok {
		return
	}
	d, err := h.svc.Create(c.Request.Context(), req.metadata(), fh)
	if err != nil {
		writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusCreated, d)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.GetAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusOK, items)
}

func (h *Handler) get(c *gin.Context) {
	d, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusOK, d)
}

func (h *Handler) update(c *gin.Context) {
	req, fh, ok := bind(c)
	if !ok {
		return
	}
	d, err := h.svc.Update(c.Request.Context(), c.Param("id"), req.metadata(), fh)
	if err != nil {
		writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusOK, d)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	httpapi.OKMessage(c, http.StatusOK, "document deleted")
}

func (h *Handler) submit(c *gin.Context) {
	req, fh, ok := bind(c)
	if !ok {
		return
	}
	if strings.TrimSpace(req.SubmitterEmail) == "" {
		httpapi.Fail(c, http.StatusBadRequest, "submitter_email is required")
		return
	}
	d, err := h.svc.Submit(c.Request.Context(), req.metadata(), req.SubmitterEmail, fh)
	if err != nil {
		writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusCreated, d)
}

func (h *Handler) listPending(c *gin.Context) {
	items, err := h.svc.ListPending(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusOK, items)
}

func (h *Handler) getPending(c *gin.Context) {
	d, err := h.svc.GetPending(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusOK, d)
}

func (h *Handler) approve(c *gin.Context) {
	d, err := h.svc.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusOK, d)
}

func (h *Handler) reject(c *gin.Context) {
	id := c.Param("id")
	removed, err := h.svc.Reject(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusOK, gin.H{"document_id": id, "removed": removed})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		httpapi.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrFileRequired),
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
