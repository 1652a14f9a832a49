package http

import "github.com/gin-gonic/gin"

// RegisterProjects attaches the /project routes. Writes go through admin.
func (h *Handler) RegisterProjects(rg *gin.RouterGroup, admin gin.HandlerFunc) {
	rg.POST("/add-project", admin, h.createProject)
	rg.GET("/all-project", h.listProjects)
	rg.GET("/get/:id", h.getProject)
	rg.PUT("/update/:id", admin, h.updateProject)
	rg.DELETE("/delete/:id", admin, h.deleteProject)

	h.registerReports(rg)
}

// RegisterPending attaches the /pending-project routes. Only create is
// public and it runs behind limit.
func (h *Handler) RegisterPending(rg *gin.RouterGroup, admin, limit gin.HandlerFunc) {
	rg.POST("/create", limit, h.submitPending)
	rg.GET("/all", admin, h.listPending)
	rg.GET("/get/:id", admin, h.getPending)
	rg.PUT("/update/:id", admin, h.updatePending)
	rg.POST("/approve/:id", admin, h.approvePending)
	rg.DELETE("/reject/:id", admin, h.rejectPending)
}
