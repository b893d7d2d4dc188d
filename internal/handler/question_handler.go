package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vigilo-labs/vigilo-backend/internal/model"
	"github.com/vigilo-labs/vigilo-backend/internal/response"
	"github.com/vigilo-labs/vigilo-backend/internal/service"
	"github.com/vigilo-labs/vigilo-backend/internal/validator"
)

// QuestionHandler handles host question management endpoints.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// Add godoc
// POST /api/v1/host/exams/:exam_id/questions
func (h *QuestionHandler) Add(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Add(c.Request.Context(), examID, &req)
	if err != nil {
		failQuestionErr(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"question": question})
}

// Update godoc
// PUT /api/v1/host/questions/:question_id
func (h *QuestionHandler) Update(c *gin.Context) {
	questionID, ok := parseUUIDParam(c, "question_id")
	if !ok {
		return
	}

	var req model.UpdateQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	question, err := h.questionService.Update(c.Request.Context(), questionID, &req)
	if err != nil {
		failQuestionErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": question})
}

// Delete godoc
// DELETE /api/v1/host/questions/:question_id
func (h *QuestionHandler) Delete(c *gin.Context) {
	questionID, ok := parseUUIDParam(c, "question_id")
	if !ok {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), questionID); err != nil {
		failQuestionErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Reorder godoc
// POST /api/v1/host/exams/:exam_id/questions/reorder
// Rewrites the display order of the exam's questions atomically.
func (h *QuestionHandler) Reorder(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	var req model.ReorderQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.questionService.Reorder(c.Request.Context(), examID, req.QuestionIDs); err != nil {
		failQuestionErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reordered": true})
}

// failQuestionErr maps question bank errors onto response codes.
func failQuestionErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExamNotFound), errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
