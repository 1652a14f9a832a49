package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/climate-finance-tracker/cft-backend/internal/api/http"
)

func (h *Handler) createProject(c *gin.Context) {
	req, file, err := bindProject(c)
	if err != nil {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.BindErrorMessage(err))
		return
	}

	id, err := h.projects.Create(c.Request.Context(), req.toInput(), file)
	if err != nil {
		writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusCreated, gin.H{"project_id": id})
}

func (h *Handler) listProjects(c *gin.Context) {
	items, err := h.projects.GetAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusOK, items)
}

func (h *Handler) getProject(c *gin.Context) {
	p, err := h.projects.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusOK, p)
}

func (h *Handler) updateProject(c *gin.Context) {
	req, file, err := bindProject(c)
	if err != nil {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.BindErrorMessage(err))
		return
	}

	id := c.Param("id")
	if err := h.projects.Update(c.Request.Context(), id, req.toInput(), file); err != nil {
		writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusOK, gin.H{"project_id": id})
}

func (h *Handler) deleteProject(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	httpapi.OKMessage(c, http.StatusOK, "project deleted")
}
