package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/climate-finance-tracker/cft-backend/internal/api/http"
	"github.com/climate-finance-tracker/cft-backend/internal/entities/domain"
)

type FundingSourceStore interface {
	NamedStore
	GetAllWithTotals(ctx context.Context) ([]domain.FundingSource, error)
	GetByIDWithTotals(ctx context.Context, id string) (*domain.FundingSource, error)
}

// FundingSourceHandler reuses the name-keyed routes but answers reads with
// the derived financial totals.
type FundingSourceHandler struct {
	*NamedHandler
	store FundingSourceStore
}

func NewFundingSourceHandler(store FundingSourceStore) *FundingSourceHandler {
	return &FundingSourceHandler{
		NamedHandler: NewNamedHandler(store, "funding source"),
		store:        store,
	}
}

func (h *FundingSourceHandler) Register(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	rg.GET("/all", h.listWithTotals)
	rg.GET("/get/:id", h.getWithTotals)
	rg.POST("/add", admin, h.add)
	rg.PUT("/update/:id", admin, h.update)
	rg.DELETE("/delete/:id", admin, h.delete)
	rg.POST("/find-or-create", admin, h.findOrCreate)
}

func (h *FundingSourceHandler) listWithTotals(c *gin.Context) {
	items, err := h.store.GetAllWithTotals(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusOK, items)
}

func (h *FundingSourceHandler) getWithTotals(c *gin.Context) {
	fs, err := h.store.GetByIDWithTotals(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusOK, fs)
}
