package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/climate-finance-tracker/cft-backend/internal/api/http"
	"github.com/climate-finance-tracker/cft-backend/internal/entities/domain"
)

type LocationStore interface {
	GetAll(ctx context.Context) ([]domain.Location, error)
}

func RegisterLocations(rg *gin.RouterGroup, store LocationStore) {
	rg.GET("/all", func(c *gin.Context) {
		items, err := store.GetAll(c.Request.Context())
		if err != nil {
			writeError(c, err, "location")
			return
		}
		httpapi.OK(c, http.StatusOK, items)
	})
}
