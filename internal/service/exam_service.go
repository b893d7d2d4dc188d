package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/vigilo-labs/vigilo-backend/internal/model"
	"github.com/vigilo-labs/vigilo-backend/internal/repository"
	"github.com/vigilo-labs/vigilo-backend/internal/response"
)

// ExamService handles exam catalog business logic.
type ExamService struct {
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	log          zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(examRepo *repository.ExamRepository, questionRepo *repository.QuestionRepository, log zerolog.Logger) *ExamService {
	return &ExamService{
		examRepo:     examRepo,
		questionRepo: questionRepo,
		log:          log.With().Str("component", "exam_service").Logger(),
	}
}

// GetByID retrieves an exam by its UUID.
func (s *ExamService) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	exam, err := s.examRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}
	return exam, nil
}

// ListOpen retrieves the exams shown on the participant join screen.
func (s *ExamService) ListOpen(ctx context.Context) ([]model.Exam, error) {
	exams, err := s.examRepo.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("list open exams: %w", err)
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	return exams, nil
}

// List retrieves exams for the host with pagination.
func (s *ExamService) List(ctx context.Context, page, perPage int) ([]model.Exam, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	exams, total, err := s.examRepo.List(ctx, page, perPage)
	if err != nil {
		return nil, nil, fmt.Errorf("list exams: %w", err)
	}
	if exams == nil {
		exams = []model.Exam{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	}
	return exams, pagination, nil
}

// Create creates a new draft exam. Monitoring defaults to enabled.
func (s *ExamService) Create(ctx context.Context, req *model.CreateExamRequest) (*model.Exam, error) {
	exam := &model.Exam{
		Title:            req.Title,
		Description:      req.Description,
		DurationMinutes:  req.DurationMinutes,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		EnableMonitoring: true,
		Status:           model.ExamStatusDraft,
	}
	if req.EnableMonitoring != nil {
		exam.EnableMonitoring = *req.EnableMonitoring
	}

	if err := s.examRepo.Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}

	s.log.Info().Str("exam_id", exam.ID.String()).Str("title", exam.Title).Msg("Exam created")
	return exam, nil
}

// Update applies the non-zero fields of the request to an existing exam.
func (s *ExamService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateExamRequest) (*model.Exam, error) {
	exam, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		exam.Title = req.Title
	}
	if req.Description != nil {
		exam.Description = *req.Description
	}
	if req.DurationMinutes > 0 {
		exam.DurationMinutes = req.DurationMinutes
	}
	if req.StartDate != nil {
		exam.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		exam.EndDate = req.EndDate
	}
	if req.EnableMonitoring != nil {
		exam.EnableMonitoring = *req.EnableMonitoring
	}
	if req.Status != "" {
		exam.Status = req.Status
	}

	if err := s.examRepo.Update(ctx, exam); err != nil {
		return nil, fmt.Errorf("update exam: %w", err)
	}
	return exam, nil
}

// Activate opens an exam for participants.
func (s *ExamService) Activate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.examRepo.UpdateStatus(ctx, id, model.ExamStatusActive); err != nil {
		return fmt.Errorf("activate exam: %w", err)
	}
	return nil
}

// Delete removes an exam and its questions. Active exams are protected.
func (s *ExamService) Delete(ctx context.Context, id uuid.UUID) error {
	exam, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if exam.Status == model.ExamStatusActive {
		return ErrExamActive
	}
	if err := s.examRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}
	return nil
}

// Questions retrieves the full question set of an exam, with answers.
func (s *ExamService) Questions(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	if _, err := s.GetByID(ctx, examID); err != nil {
		return nil, err
	}
	questions, err := s.questionRepo.ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if questions == nil {
		questions = []model.Question{}
	}
	return questions, nil
}

// QuestionsForParticipant retrieves an exam's questions with answers stripped.
func (s *ExamService) QuestionsForParticipant(ctx context.Context, examID uuid.UUID) ([]model.QuestionForParticipant, error) {
	questions, err := s.Questions(ctx, examID)
	if err != nil {
		return nil, err
	}
	stripped := make([]model.QuestionForParticipant, 0, len(questions))
	for i := range questions {
		stripped = append(stripped, questions[i].ForParticipant())
	}
	return stripped, nil
}
