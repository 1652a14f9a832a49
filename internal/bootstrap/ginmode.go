package bootstrap

import (
	"github.com/gin-gonic/gin"

	"github.com/climate-finance-tracker/cft-backend/config"
)

func SetGinMode(cfg *config.Config) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
}
