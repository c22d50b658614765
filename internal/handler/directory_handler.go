package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/thesis-defense-api/internal/service"
	appErrors "github.com/noah-isme/thesis-defense-api/pkg/errors"
	"github.com/noah-isme/thesis-defense-api/pkg/response"
)

// DirectoryHandler exposes scheduling-time availability queries.
type DirectoryHandler struct {
	service *service.DirectoryService
}

// NewDirectoryHandler constructs a directory handler.
func NewDirectoryHandler(svc *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: svc}
}

// EligibleTeachers godoc
// @Summary List eligible teachers
// @Description List teachers free for a prospective slot; a teacher in any role of an overlapping session is excluded
// @Tags Directory
// @Produce json
// @Param term_id query string true "Term ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param start_time query string true "Start time (HH:MM)"
// @Param end_time query string true "End time (HH:MM)"
// @Param exclude_session_id query string false "Session being edited"
// @Success 200 {object} response.Envelope
// @Router /directory/eligible-teachers [get]
func (h *DirectoryHandler) EligibleTeachers(c *gin.Context) {
	var query service.DirectoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	teachers, err := h.service.EligibleTeachers(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}
