package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vigilo-labs/vigilo-backend/internal/model"
	"github.com/vigilo-labs/vigilo-backend/internal/response"
	"github.com/vigilo-labs/vigilo-backend/internal/service"
	"github.com/vigilo-labs/vigilo-backend/internal/validator"
)

// AttemptHandler handles the participant-facing attempt lifecycle endpoints.
type AttemptHandler struct {
	attemptService *service.AttemptService
	examService    *service.ExamService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService, examService *service.ExamService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService, examService: examService}
}

// Start godoc
// POST /api/v1/exam/attempts
// Starts a new attempt, or resumes the caller's in-progress attempt for the exam.
func (h *AttemptHandler) Start(c *gin.Context) {
	var req model.StartAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.attemptService.Start(c.Request.Context(), req.Name, req.Email, req.ExamID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExamNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrExamNotAvailable):
			response.FailWithMessage(c, http.StatusForbidden, response.ErrExamNotAvailable, err.Error())
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	status := http.StatusCreated
	if result.Resumed {
		status = http.StatusOK
	}
	response.Success(c, status, gin.H{
		"attempt_id":     result.Attempt.ID,
		"participant_id": result.Participant.ID,
		"exam_id":        result.Attempt.ExamID,
		"start_time":     result.Attempt.StartTime,
		"resumed":        result.Resumed,
	})
}

// SubmitAnswer godoc
// POST /api/v1/exam/attempts/:attempt_id/answers
// Grades and records one answer. Resubmitting a question replaces the record.
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	err := h.attemptService.SubmitAnswer(c.Request.Context(), attemptID, req.QuestionID, req.Answer, req.TimeTakenSeconds)
	if err != nil {
		failAttemptErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"recorded": true})
}

// RecordViolation godoc
// POST /api/v1/exam/attempts/:attempt_id/violations
// Increments the alt-tab counter; the limit force-finishes the attempt.
func (h *AttemptHandler) RecordViolation(c *gin.Context) {
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	result, err := h.attemptService.RecordViolation(c.Request.Context(), attemptID, time.Now())
	if err != nil {
		failAttemptErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Finish godoc
// POST /api/v1/exam/attempts/:attempt_id/finish
// Finalizes the attempt. Finishing an already-finished attempt returns the
// stored terminal state unchanged.
func (h *AttemptHandler) Finish(c *gin.Context) {
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	attempt, err := h.attemptService.Terminate(c.Request.Context(), attemptID, time.Now())
	if err != nil {
		failAttemptErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, attempt)
}

// GetResult godoc
// GET /api/v1/exam/attempts/:attempt_id
// Returns the raw attempt record.
func (h *AttemptHandler) GetResult(c *gin.Context) {
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	attempt, err := h.attemptService.GetResult(c.Request.Context(), attemptID)
	if err != nil {
		failAttemptErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, attempt)
}

// GetAnalysis godoc
// GET /api/v1/exam/attempts/:attempt_id/analysis
// Returns the per-question breakdown with formatted durations.
func (h *AttemptHandler) GetAnalysis(c *gin.Context) {
	attemptID, ok := parseUUIDParam(c, "attempt_id")
	if !ok {
		return
	}

	analysis, err := h.attemptService.Analysis(c.Request.Context(), attemptID)
	if err != nil {
		failAttemptErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, analysis)
}

// ListOpenExams godoc
// GET /api/v1/exam/exams
// Returns the exams shown on the participant join screen.
func (h *AttemptHandler) ListOpenExams(c *gin.Context) {
	exams, err := h.examService.ListOpen(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// ListExamQuestions godoc
// GET /api/v1/exam/exams/:exam_id/questions
// Returns the exam's questions with correct answers stripped.
func (h *AttemptHandler) ListExamQuestions(c *gin.Context) {
	examID, ok := parseUUIDParam(c, "exam_id")
	if !ok {
		return
	}

	questions, err := h.examService.QuestionsForParticipant(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, service.ErrExamNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// ListParticipantResults godoc
// GET /api/v1/exam/participants/:participant_id/results
// Returns every attempt of one participant, newest first.
func (h *AttemptHandler) ListParticipantResults(c *gin.Context) {
	participantID, err := strconv.Atoi(c.Param("participant_id"))
	if err != nil || participantID < 1 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	attempts, err := h.attemptService.ListParticipantResults(c.Request.Context(), participantID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if attempts == nil {
		attempts = []model.ExamAttempt{}
	}

	response.Success(c, http.StatusOK, gin.H{"results": attempts})
}

// ────────────────────────────────────────────────────────────────────────────
// Shared helpers
// ────────────────────────────────────────────────────────────────────────────

// parseUUIDParam reads a UUID path parameter, responding 400 on failure.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// failAttemptErr maps attempt lifecycle errors onto response codes.
func failAttemptErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAttemptNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrAttemptTerminal):
		response.Fail(c, http.StatusConflict, response.ErrAttemptTerminal)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
