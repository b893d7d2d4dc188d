package model

import (
	"time"

	"github.com/google/uuid"
)

// ViolationLimit is the alt-tab count at which an attempt is force-finished.
const ViolationLimit = 3

// AnswerRecord is one graded submission inside an attempt. CorrectAnswer is a
// snapshot taken at submission time so later question edits do not rewrite
// history.
type AnswerRecord struct {
	QuestionID       uuid.UUID `json:"question_id"`
	SubmittedAnswer  string    `json:"submitted_answer"`
	CorrectAnswer    string    `json:"correct_answer"`
	IsCorrect        bool      `json:"is_correct"`
	TimeTakenSeconds int       `json:"time_taken_seconds"`
}

// ExamAttempt is one participant's timed pass through one exam.
//
// EndTime, DurationSeconds, Score and AverageTimePerQuestionSeconds are nil
// while the attempt is in progress and are all set exactly once by Finalize.
// Once EndTime is non-nil the attempt is terminal: no answers, violation
// increments or re-finalization are accepted.
type ExamAttempt struct {
	ID                            uuid.UUID      `json:"id"`
	ParticipantID                 int            `json:"participant_id"`
	ExamID                        uuid.UUID      `json:"exam_id"`
	StartTime                     time.Time      `json:"start_time"`
	EndTime                       *time.Time     `json:"end_time,omitempty"`
	DurationSeconds               *int           `json:"duration_seconds,omitempty"`
	AltTabCount                   int            `json:"alt_tab_count"`
	Score                         *int           `json:"score,omitempty"`
	AverageTimePerQuestionSeconds *float64       `json:"average_time_per_question_seconds,omitempty"`
	AnsweredQuestions             []AnswerRecord `json:"answered_questions"`
}

// IsTerminal reports whether the attempt has been finished.
func (a *ExamAttempt) IsTerminal() bool {
	return a.EndTime != nil
}

// RecordAnswer appends a graded answer, replacing any earlier record for the
// same question so each question is counted at most once.
func (a *ExamAttempt) RecordAnswer(rec AnswerRecord) {
	for i := range a.AnsweredQuestions {
		if a.AnsweredQuestions[i].QuestionID == rec.QuestionID {
			a.AnsweredQuestions[i] = rec
			return
		}
	}
	a.AnsweredQuestions = append(a.AnsweredQuestions, rec)
}

// Finalize closes the attempt at the given instant, deriving duration, score
// and the per-question average. Calling it on a terminal attempt is a no-op so
// a manual finish racing a violation-triggered one cannot recompute results.
func (a *ExamAttempt) Finalize(now time.Time) {
	if a.IsTerminal() {
		return
	}

	end := now
	a.EndTime = &end

	duration := int(end.Sub(a.StartTime).Seconds())
	a.DurationSeconds = &duration

	score := 0
	totalTime := 0
	for _, ans := range a.AnsweredQuestions {
		if ans.IsCorrect {
			score++
		}
		totalTime += ans.TimeTakenSeconds
	}
	a.Score = &score

	// Exactly 0 (not nil) when nothing was answered.
	average := 0.0
	if n := len(a.AnsweredQuestions); n > 0 {
		average = float64(totalTime) / float64(n)
	}
	a.AverageTimePerQuestionSeconds = &average
}

// StartAttemptRequest is the payload for a participant starting an exam.
type StartAttemptRequest struct {
	Name   string    `json:"name" binding:"required,min=2,max=100"`
	Email  string    `json:"email" binding:"required,email,max=255"`
	ExamID uuid.UUID `json:"exam_id" binding:"required"`
}

// SubmitAnswerRequest is the payload for submitting one answer.
type SubmitAnswerRequest struct {
	QuestionID       uuid.UUID `json:"question_id" binding:"required"`
	Answer           string    `json:"answer" binding:"required,max=2000"`
	TimeTakenSeconds int       `json:"time_taken_seconds" binding:"min=0"`
}
