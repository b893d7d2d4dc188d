package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vigilo-labs/vigilo-backend/internal/response"
	"github.com/vigilo-labs/vigilo-backend/internal/service"
)

// DashboardHandler handles host monitoring and dashboard endpoints.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GlobalStats godoc
// GET /api/v1/host/dashboard/stats
func (h *DashboardHandler) GlobalStats(c *gin.Context) {
	stats, err := h.dashboardService.GlobalStats(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// AllParticipants godoc
// GET /api/v1/host/dashboard/participants?limit=
func (h *DashboardHandler) AllParticipants(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	participants, err := h.dashboardService.AllParticipants(c.Request.Context(), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"participants": participants})
}

// RecentViolations godoc
// GET /api/v1/host/dashboard/recent-violations?limit=
func (h *DashboardHandler) RecentViolations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	violations, err := h.dashboardService.RecentViolations(c.Request.Context(), limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"violations": violations})
}

// ExamStats godoc
// GET /api/v1/host/exams/:exam_id/stats
func (h *DashboardHandler) ExamStats(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	stats, err := h.dashboardService.ExamStats(c.Request.Context(), examID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// ExamParticipants godoc
// GET /api/v1/host/exams/:exam_id/participants
func (h *DashboardHandler) ExamParticipants(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	participants, err := h.dashboardService.ExamParticipants(c.Request.Context(), examID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"participants": participants})
}

// ExamViolations godoc
// GET /api/v1/host/exams/:exam_id/violations
func (h *DashboardHandler) ExamViolations(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	violations, err := h.dashboardService.ExamViolations(c.Request.Context(), examID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"violations": violations})
}

// ExamActivity godoc
// GET /api/v1/host/exams/:exam_id/activity?limit=
func (h *DashboardHandler) ExamActivity(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	activity, err := h.dashboardService.ExamActivity(c.Request.Context(), examID, limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"activity": activity})
}

// ExamAttempts godoc
// GET /api/v1/host/exams/:exam_id/attempts
func (h *DashboardHandler) ExamAttempts(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	attempts, err := h.dashboardService.ExamAttempts(c.Request.Context(), examID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attempts": attempts})
}
