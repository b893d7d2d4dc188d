package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vigilo-labs/vigilo-backend/internal/model"
	"github.com/vigilo-labs/vigilo-backend/internal/repository"
)

// QuestionService handles question bank business logic.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	examRepo     *repository.ExamRepository
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository, examRepo *repository.ExamRepository) *QuestionService {
	return &QuestionService{questionRepo: questionRepo, examRepo: examRepo}
}

// Add appends a question to an exam.
func (s *QuestionService) Add(ctx context.Context, examID uuid.UUID, req *model.AddQuestionRequest) (*model.Question, error) {
	if _, err := s.examRepo.GetByID(ctx, examID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	question := &model.Question{
		ExamID:        examID,
		QuestionText:  req.QuestionText,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		OrderNum:      req.OrderNum,
	}
	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return question, nil
}

// Update applies the non-zero fields of the request to an existing question.
func (s *QuestionService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateQuestionRequest) (*model.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}

	if req.QuestionText != "" {
		question.QuestionText = req.QuestionText
	}
	if len(req.Options) > 0 {
		question.Options = req.Options
	}
	if req.CorrectAnswer != "" {
		question.CorrectAnswer = req.CorrectAnswer
	}
	if req.OrderNum != nil {
		question.OrderNum = *req.OrderNum
	}

	if err := s.questionRepo.Update(ctx, question); err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	return question, nil
}

// Delete removes a question.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.questionRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("get question: %w", err)
	}
	if err := s.questionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	return nil
}

// Reorder rewrites the display order of an exam's questions.
func (s *QuestionService) Reorder(ctx context.Context, examID uuid.UUID, questionIDs []uuid.UUID) error {
	if _, err := s.examRepo.GetByID(ctx, examID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrExamNotFound
		}
		return fmt.Errorf("get exam: %w", err)
	}
	if err := s.questionRepo.Reorder(ctx, examID, questionIDs); err != nil {
		return fmt.Errorf("reorder questions: %w", err)
	}
	return nil
}
