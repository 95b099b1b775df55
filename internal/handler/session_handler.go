package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openturf/territory-backend-go/internal/middleware"
	"github.com/openturf/territory-backend-go/internal/models"
	"github.com/openturf/territory-backend-go/internal/service"
	"github.com/openturf/territory-backend-go/internal/session"
	"github.com/openturf/territory-backend-go/pkg/response"
)

// SessionHandler handles HTTP requests for tracking sessions
type SessionHandler struct {
	tracking *service.TrackingService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(tracking *service.TrackingService) *SessionHandler {
	return &SessionHandler{tracking: tracking}
}

type startSessionRequest struct {
	Mode models.ActivityMode `json:"mode" binding:"required"`
}

// Start handles POST /api/v1/sessions
func (h *SessionHandler) Start(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid session request")
		return
	}
	if !req.Mode.Valid() {
		response.BadRequest(c, "Mode must be walk, run or cycle")
		return
	}

	sess, err := h.tracking.Start(middleware.OwnerID(c), req.Mode)
	if err != nil {
		if errors.Is(err, session.ErrSessionActive) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, sess)
}

// Pause handles POST /api/v1/sessions/current/pause
func (h *SessionHandler) Pause(c *gin.Context) {
	sess, err := h.tracking.Pause(middleware.OwnerID(c))
	if err != nil {
		sessionError(c, err)
		return
	}
	response.Success(c, sess)
}

// Resume handles POST /api/v1/sessions/current/resume
func (h *SessionHandler) Resume(c *gin.Context) {
	sess, err := h.tracking.Resume(middleware.OwnerID(c))
	if err != nil {
		sessionError(c, err)
		return
	}
	response.Success(c, sess)
}

// Stop handles DELETE /api/v1/sessions/current
func (h *SessionHandler) Stop(c *gin.Context) {
	summary, err := h.tracking.Stop(middleware.OwnerID(c))
	if err != nil {
		sessionError(c, err)
		return
	}
	response.Success(c, summary)
}

// Current handles GET /api/v1/sessions/current
func (h *SessionHandler) Current(c *gin.Context) {
	view, err := h.tracking.Current(middleware.OwnerID(c))
	if err != nil {
		sessionError(c, err)
		return
	}
	response.Success(c, view)
}

// History handles GET /api/v1/sessions
func (h *SessionHandler) History(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		response.BadRequest(c, "Invalid limit parameter")
		return
	}

	sessions, err := h.tracking.History(middleware.OwnerID(c), limit)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, sessions)
}

// IngestPoint handles POST /api/v1/sessions/current/points
func (h *SessionHandler) IngestPoint(c *gin.Context) {
	var sample models.RawSample
	if err := c.ShouldBindJSON(&sample); err != nil {
		response.BadRequest(c, "Invalid position sample")
		return
	}

	outcome, err := h.tracking.Ingest(c.Request.Context(), middleware.OwnerID(c), sample)
	if err != nil {
		sessionError(c, err)
		return
	}
	response.Success(c, outcome)
}

type stepsRequest struct {
	Total int64 `json:"total" binding:"min=0"`
}

// SetSteps handles POST /api/v1/sessions/current/steps
func (h *SessionHandler) SetSteps(c *gin.Context) {
	var req stepsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid steps payload")
		return
	}

	if err := h.tracking.SetStepTotal(middleware.OwnerID(c), req.Total); err != nil {
		sessionError(c, err)
		return
	}
	response.Success(c, gin.H{"total": req.Total})
}

// sessionError maps controller lifecycle errors onto HTTP statuses.
func sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNoSession):
		response.NotFound(c, err.Error())
	case errors.Is(err, session.ErrNotActive),
		errors.Is(err, session.ErrNotPaused),
		errors.Is(err, session.ErrSessionStopped),
		errors.Is(err, session.ErrSessionActive):
		response.Conflict(c, err.Error())
	default:
		response.InternalError(c, err.Error())
	}
}
