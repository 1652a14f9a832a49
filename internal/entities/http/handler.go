package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/climate-finance-tracker/cft-backend/internal/api/http"
	"github.com/climate-finance-tracker/cft-backend/internal/entities/domain"
)

// NamedStore is the repository contract shared by every name-keyed entity.
type NamedStore interface {
	Add(ctx context.Context, name string) (*domain.Entity, error)
	GetAll(ctx context.Context) ([]domain.Entity, error)
	GetByID(ctx context.Context, id string) (*domain.Entity, error)
	Update(ctx context.Context, id, name string) (*domain.Entity, error)
	Delete(ctx context.Context, id string) error
	FindOrCreate(ctx context.Context, name string) (*domain.Entity, bool, error)
}

// NamedHandler serves CRUD routes for one name-keyed entity.
type NamedHandler struct {
	store NamedStore
	label string
}

func NewNamedHandler(store NamedStore, label string) *NamedHandler {
	return &NamedHandler{store: store, label: label}
}

// Register attaches the entity routes. Writes go through admin.
func (h *NamedHandler) Register(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	rg.GET("/all", h.list)
	rg.GET("/get/:id", h.get)
	rg.POST("/add", admin, h.add)
	rg.PUT("/update/:id", admin, h.update)
	rg.DELETE("/delete/:id", admin, h.delete)
	rg.POST("/find-or-create", admin, h.findOrCreate)
}

type nameReq struct {
	Name string `json:"name" binding:"required"`
}

func (h *NamedHandler) add(c *gin.Context) {
	var req nameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.BindErrorMessage(err))
		return
	}

	e, err := h.store.Add(c.Request.Context(), req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusCreated, e)
}

func (h *NamedHandler) list(c *gin.Context) {
	items, err := h.store.GetAll(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusOK, items)
}

func (h *NamedHandler) get(c *gin.Context) {
	e, err := h.store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusOK, e)
}

func (h *NamedHandler) update(c *gin.Context) {
	var req nameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.BindErrorMessage(err))
		return
	}

	e, err := h.store.Update(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusOK, e)
}

func (h *NamedHandler) delete(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	httpapi.OKMessage(c, http.StatusOK, h.label+" deleted")
}

func (h *NamedHandler) findOrCreate(c *gin.Context) {
	var req nameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.BindErrorMessage(err))
		return
	}

	e, created, err := h.store.FindOrCreate(c.Request.Context(), req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	httpapi.OK(c, code, e)
}

func (h *NamedHandler) writeError(c *gin.Context, err error) {
	writeError(c, err, h.label)
}

func writeError(c *gin.Context, err error, label string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		httpapi.Fail(c, http.StatusNotFound, label+" not found")
	case errors.Is(err, domain.ErrNameRequired):
		httpapi.Fail(c, http.StatusBadRequest, err.Error())
	default:
		httpapi.Fail(c, http.StatusInternalServerError, err.Error())
	}
}
