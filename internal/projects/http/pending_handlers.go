package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	httpapi "github.com/climate-finance-tracker/cft-backend/internal/api/http"
	"github.com/climate-finance-tracker/cft-backend/internal/projects/domain"
)

func (h *Handler) submitPending(c *gin.Context) {
	req, file, err := bindProject(c)
	if err != nil {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.BindErrorMessage(err))
		return
	}
	if strings.TrimSpace(req.SubmitterEmail) == "" {
		httpapi.Fail(c, http.StatusBadRequest, "submitter_email is required")
		return
	}

	in := &domain.PendingInput{Input: *req.toInput(), SubmitterEmail: req.SubmitterEmail}
	p, err := h.pending.Submit(c.Request.Context(), in, file)
	if err != nil {
		writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusCreated, p)
}

func (h *Handler) listPending(c *gin.Context) {
	items, err := h.pending.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusOK, items)
}

func (h *Handler) getPending(c *gin.Context) {
	p, err := h.pending.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusOK, p)
}

func (h *Handler) updatePending(c *gin.Context) {
	req, _, err := bindProject(c)
	if err != nil {
		httpapi.Fail(c, http.StatusBadRequest, httpapi.BindErrorMessage(err))
		return
	}

	p, err := h.pending.Update(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusOK, p)
}

func (h *Handler) approvePending(c *gin.Context) {
	id := c.Param("id")
	projectID, err := h.pending.Approve(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusOK, gin.H{"pending_project_id": id, "project_id": projectID})
}

// rejectPending succeeds whether or not a row was removed; the removed flag
// tells the caller which.
func (h *Handler) rejectPending(c *gin.Context) {
	id := c.Param("id")
	removed, err := h.pending.Reject(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	httpapi.OK(c, http.StatusOK, gin.H{"pending_project_id": id, "removed": removed})
}
