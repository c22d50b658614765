package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/thesis-defense-api/internal/middleware"
	"github.com/noah-isme/thesis-defense-api/internal/models"
	"github.com/noah-isme/thesis-defense-api/internal/service"
	appErrors "github.com/noah-isme/thesis-defense-api/pkg/errors"
	"github.com/noah-isme/thesis-defense-api/pkg/response"
)

// SessionHandler exposes defense-session endpoints.
type SessionHandler struct {
	service *service.SessionService
}

// NewSessionHandler constructs a session handler.
func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// List godoc
// @Summary List sessions
// @Description List defense sessions with filters
// @Tags Sessions
// @Produce json
// @Param termId query string false "Filter by term"
// @Param studentId query string false "Filter by student"
// @Param teacherId query string false "Filter by a teacher in any role"
// @Param classroom query string false "Filter by classroom"
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param concluded query bool false "Filter by concluded flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	var filter models.SessionFilter
	filter.TermID = c.Query("termId")
	filter.StudentID = c.Query("studentId")
	filter.TeacherID = c.Query("teacherId")
	filter.Classroom = c.Query("classroom")
	if raw := c.Query("date"); raw != "" {
		if date, err := time.Parse("2006-01-02", raw); err == nil {
			filter.Date = &date
		}
	}
	if raw := c.Query("concluded"); raw != "" {
		if val, err := strconv.ParseBool(raw); err == nil {
			filter.Concluded = &val
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	sessions, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, pagination)
}

// Get godoc
// @Summary Get session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Submit godoc
// @Summary Submit session
// @Description Submit a session draft; it is admitted atomically against the term schedule or rejected with the first violated rule
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body service.SubmitSessionRequest true "Session draft"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Submit(c *gin.Context) {
	var req service.SubmitSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.service.Submit(c.Request.Context(), req, middleware.ActorIdentity(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Update godoc
// @Summary Update session
// @Description Re-admit an existing session with new contents; the stored session never conflicts with itself
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.SubmitSessionRequest true "Session draft"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id} [put]
func (h *SessionHandler) Update(c *gin.Context) {
	var req service.SubmitSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.service.Update(c.Request.Context(), c.Param("id"), req, middleware.ActorIdentity(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Check godoc
// @Summary Check session draft
// @Description Dry-run the admission rules without persisting anything
// @Tags Sessions
// @Accept json
// @Produce json
// @Param excludeSessionId query string false "Session being edited"
// @Param payload body service.SubmitSessionRequest true "Session draft"
// @Success 200 {object} response.Envelope
// @Router /sessions/check [post]
func (h *SessionHandler) Check(c *gin.Context) {
	var req service.SubmitSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	rejection, err := h.service.Check(c.Request.Context(), req, c.Query("excludeSessionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{"admissible": rejection == nil}
	response.JSON(c, http.StatusOK, rejection, nil, meta)
}

// Conclude godoc
// @Summary Conclude session
// @Description Flip the concluded flag once the defense took place
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.ConcludeSessionRequest true "Concluded payload"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/conclude [post]
func (h *SessionHandler) Conclude(c *gin.Context) {
	var req service.ConcludeSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.service.Conclude(c.Request.Context(), c.Param("id"), req, middleware.ActorIdentity(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Delete godoc
// @Summary Delete session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), middleware.ActorIdentity(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
