package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/climate-finance-tracker/cft-backend/internal/api/http"
	"github.com/climate-finance-tracker/cft-backend/internal/entities/domain"
)

type SDGStore interface {
	Add(ctx context.Context, number int, title string) (*domain.SDG, error)
	GetAll(ctx context.Context) ([]domain.SDG, error)
	GetByID(ctx context.Context, id string) (*domain.SDG, error)
	Update(ctx context.Context, id string, number int, title string) (*domain.SDG, error)
	Delete(ctx context.Context, id string) error
	FindOrCreate(ctx context.Context, number int, title string) (*domain.SDG, bool, error)
}

type SDGHandler struct {
	store SDGStore
}

func NewSDGHandler(store SDGStore) *SDGHandler {
	return &SDGHandler{store: store}
}

func (h *SDGHandler) Register(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	rg.GET("/all", h.list)
	rg.GET("/get/:id", h.get)
	rg.POST("/add", admin, h.add)
	rg.PUT("/update/:id", admin, h.update)
	rg.DELETE("/delete/:id", admin, h.delete)
	rg.POST("/find-or-create", admin, h.findOrCreate)
}

type sdgReq struct {
	Number int    `json:"sdg_number" binding:"required,min=1,max=17"`
	Title  string `json:"title" binding:"required"`
}

func (h *SDGHandler) add(c *gin.Context) {
	var req sdgReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.BindErrorMessage(err))
		return
	}

	s, err := h.store.Add(c.Request.Context(), req.Number, req.Title)
	if err != nil {
		writeError(c, err, "sdg")
		return
	}
	httpapi.OK(c, http.StatusCreated, s)
}

func (h *SDGHandler) list(c *gin.Context) {
	items, err := h.store.GetAll(c.Request.Context())
	if err != nil {
		writeError(c, err, "sdg")
		return
	}
	httpapi.OK(c, http.StatusOK, items)
}

func (h *SDGHandler) get(c *gin.Context) {
	s, err := h.store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "sdg")
		return
	}
	httpapi.OK(c, http.StatusOK, s)
}

func (h *SDGHandler) update(c *gin.Context) {
	var req sdgReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.BindErrorMessage(err))
		return
	}

	s, err := h.store.Update(c.Request.Context(), c.Param("id"), req.Number, req.Title)
	if err != nil {
		writeError(c, err, "sdg")
		return
	}
	httpapi.OK(c, http.StatusOK, s)
}

func (h *SDGHandler) delete(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "sdg")
		return
	}
	httpapi.OKMessage(c, http.StatusOK, "sdg deleted")
}

func (h *SDGHandler) findOrCreate(c *gin.Context) {
	var req sdgReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.BindErrorMessage(err))
		return
	}

	s, created, err := h.store.FindOrCreate(c.Request.Context(), req.Number, req.Title)
	if err != nil {
		writeError(c, err, "sdg")
		return
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	httpapi.OK(c, code, s)
}
