package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vigilo-labs/vigilo-backend/internal/model"
	"github.com/vigilo-labs/vigilo-backend/internal/response"
	"github.com/vigilo-labs/vigilo-backend/internal/service"
	"github.com/vigilo-labs/vigilo-backend/internal/validator"
)

// ExamHandler handles host exam management endpoints.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// List godoc
// GET /api/v1/host/exams?page=&per_page=
func (h *ExamHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	exams, pagination, err := h.examService.List(c.Request.Context(), page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"exams": exams}, pagination)
}

// Get godoc
// GET /api/v1/host/exams/:exam_id
func (h *ExamHandler) Get(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), examID)
	if err != nil {
		failExamErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// Create godoc
// POST /api/v1/host/exams
// Creates a draft exam. Monitoring defaults to enabled.
func (h *ExamHandler) Create(c *gin.Context) {
	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// Update godoc
// PUT /api/v1/host/exams/:exam_id
func (h *ExamHandler) Update(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	var req model.UpdateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Update(c.Request.Context(), examID, &req)
	if err != nil {
		failExamErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// Activate godoc
// POST /api/v1/host/exams/:exam_id/activate
// Opens the exam for participants.
func (h *ExamHandler) Activate(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	if err := h.examService.Activate(c.Request.Context(), examID); err != nil {
		failExamErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": model.ExamStatusActive})
}

// Delete godoc
// DELETE /api/v1/host/exams/:exam_id
// Removes the exam and its questions. Active exams are protected.
func (h *ExamHandler) Delete(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	if err := h.examService.Delete(c.Request.Context(), examID); err != nil {
		if errors.Is(err, service.ErrExamActive) {
			response.Fail(c, http.StatusConflict, response.ErrExamActive)
			return
		}
		failExamErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListQuestions godoc
// GET /api/v1/host/exams/:exam_id/questions
// Returns the full question set, correct answers included.
func (h *ExamHandler) ListQuestions(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	questions, err := h.examService.Questions(c.Request.Context(), examID)
	if err != nil {
		failExamErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// failExamErr maps exam catalog errors onto response codes.
func failExamErr(c *gin.Context, err error) {
	if errors.Is(err, service.ErrExamNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
