package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Question represents a single exam question. CorrectAnswer is the exact
// expected submission; grading is a case-sensitive string comparison.
type Question struct {
	ID            uuid.UUID       `json:"id"`
	ExamID        uuid.UUID       `json:"exam_id"`
	QuestionText  string          `json:"question_text"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer string          `json:"correct_answer"`
	OrderNum      int             `json:"order_num"`
}

// QuestionForParticipant is a question without the correct answer, sent to participants.
type QuestionForParticipant struct {
	ID           uuid.UUID       `json:"id"`
	QuestionText string          `json:"question_text"`
	Options      json.RawMessage `json:"options"`
	OrderNum     int             `json:"order_num"`
}

// ForParticipant strips the correct answer for delivery to a participant.
func (q *Question) ForParticipant() QuestionForParticipant {
	return QuestionForParticipant{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		Options:      q.Options,
		OrderNum:     q.OrderNum,
	}
}

// AddQuestionRequest is the payload for adding a question to an exam.
type AddQuestionRequest struct {
	QuestionText  string          `json:"question_text" binding:"required,min=1,max=2000"`
	Options       json.RawMessage `json:"options" binding:"required"`
	CorrectAnswer string          `json:"correct_answer" binding:"required,max=255"`
	OrderNum      int             `json:"order_num" binding:"min=0"`
}

// UpdateQuestionRequest is the payload for editing an existing question.
type UpdateQuestionRequest struct {
	QuestionText  string          `json:"question_text" binding:"omitempty,min=1,max=2000"`
	Options       json.RawMessage `json:"options" binding:"omitempty"`
	CorrectAnswer string          `json:"correct_answer" binding:"omitempty,max=255"`
	OrderNum      *int            `json:"order_num" binding:"omitempty,min=0"`
}

// ReorderQuestionsRequest is the payload for bulk reordering questions.
type ReorderQuestionsRequest struct {
	QuestionIDs []uuid.UUID `json:"question_ids" binding:"required,min=1"`
}
