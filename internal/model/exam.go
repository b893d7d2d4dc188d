package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the possible states of an exam.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "draft"
	ExamStatusActive    ExamStatus = "active"
	ExamStatusCompleted ExamStatus = "completed"
	ExamStatusCancelled ExamStatus = "cancelled"
)

// Exam represents an exam session a participant can take.
// StartDate/EndDate bound the availability window; nil means unbounded.
type Exam struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	DurationMinutes  int        `json:"duration_minutes"`
	QuestionCount    int        `json:"question_count"`
	StartDate        *time.Time `json:"start_date,omitempty"`
	EndDate          *time.Time `json:"end_date,omitempty"`
	EnableMonitoring bool       `json:"enable_monitoring"`
	Status           ExamStatus `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// OpenForTaking reports whether the exam status admits new attempts.
// Draft exams are intentionally joinable so hosts can dry-run them.
func (e *Exam) OpenForTaking() bool {
	return e.Status == ExamStatusDraft || e.Status == ExamStatusActive
}

// CreateExamRequest is the payload for creating a new exam.
type CreateExamRequest struct {
	Title            string     `json:"title" binding:"required,min=3,max=255"`
	Description      string     `json:"description" binding:"omitempty,max=2000"`
	DurationMinutes  int        `json:"duration_minutes" binding:"required,min=1,max=480"`
	StartDate        *time.Time `json:"start_date" binding:"omitempty"`
	EndDate          *time.Time `json:"end_date" binding:"omitempty,gtfield=StartDate"`
	EnableMonitoring *bool      `json:"enable_monitoring" binding:"omitempty"`
}

// UpdateExamRequest is the payload for updating an existing exam.
type UpdateExamRequest struct {
	Title            string     `json:"title" binding:"omitempty,min=3,max=255"`
	Description      *string    `json:"description" binding:"omitempty,max=2000"`
	DurationMinutes  int        `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	StartDate        *time.Time `json:"start_date" binding:"omitempty"`
	EndDate          *time.Time `json:"end_date" binding:"omitempty"`
	EnableMonitoring *bool      `json:"enable_monitoring" binding:"omitempty"`
	Status           ExamStatus `json:"status" binding:"omitempty,oneof=draft active completed cancelled"`
}
