package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// QuestionAnalysis is one answer record joined with the live question for display.
type QuestionAnalysis struct {
	QuestionID         uuid.UUID       `json:"question_id"`
	QuestionText       string          `json:"question_text"`
	Options            json.RawMessage `json:"options"`
	SubmittedAnswer    string          `json:"submitted_answer"`
	CorrectAnswer      string          `json:"correct_answer"`
	IsCorrect          bool            `json:"is_correct"`
	TimeTakenSeconds   int             `json:"time_taken_seconds"`
	TimeTakenFormatted string          `json:"time_taken_formatted"`
}

// AttemptAnalysis is the per-question breakdown of one attempt.
type AttemptAnalysis struct {
	AttemptID                     uuid.UUID          `json:"attempt_id"`
	ParticipantName               string             `json:"participant_name"`
	ParticipantEmail              string             `json:"participant_email"`
	StartTime                     time.Time          `json:"start_time"`
	EndTime                       *time.Time         `json:"end_time,omitempty"`
	DurationSeconds               *int               `json:"duration_seconds,omitempty"`
	DurationFormatted             string             `json:"duration_formatted"`
	Score                         *int               `json:"score,omitempty"`
	TotalQuestions                int                `json:"total_questions"`
	AverageTimePerQuestionSeconds *float64           `json:"average_time_per_question_seconds,omitempty"`
	AverageTimeFormatted          string             `json:"average_time_formatted"`
	AltTabCount                   int                `json:"alt_tab_count"`
	Questions                     []QuestionAnalysis `json:"questions"`
}

// Analysis builds the read-only breakdown of an attempt: every answer record
// joined with the current question text/options, plus formatted durations.
// Pure projection of stored state; nothing is mutated.
func (s *AttemptService) Analysis(ctx context.Context, attemptID uuid.UUID) (*AttemptAnalysis, error) {
	attempt, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	participant, err := s.participants.GetByID(ctx, attempt.ParticipantID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get participant: %w", err)
	}

	questions := make([]QuestionAnalysis, 0, len(attempt.AnsweredQuestions))
	for _, ans := range attempt.AnsweredQuestions {
		qa := QuestionAnalysis{
			QuestionID:         ans.QuestionID,
			SubmittedAnswer:    ans.SubmittedAnswer,
			CorrectAnswer:      ans.CorrectAnswer,
			IsCorrect:          ans.IsCorrect,
			TimeTakenSeconds:   ans.TimeTakenSeconds,
			TimeTakenFormatted: formatSeconds(ans.TimeTakenSeconds),
		}
		// Join with the live question; a since-deleted question still shows
		// the graded record, just without text/options.
		if q, err := s.questions.GetByID(ctx, ans.QuestionID); err == nil {
			qa.QuestionText = q.QuestionText
			qa.Options = q.Options
		}
		questions = append(questions, qa)
	}

	analysis := &AttemptAnalysis{
		AttemptID:                     attempt.ID,
		StartTime:                     attempt.StartTime,
		EndTime:                       attempt.EndTime,
		DurationSeconds:               attempt.DurationSeconds,
		DurationFormatted:             formatOptionalSeconds(attempt.DurationSeconds),
		Score:                         attempt.Score,
		TotalQuestions:                len(attempt.AnsweredQuestions),
		AverageTimePerQuestionSeconds: attempt.AverageTimePerQuestionSeconds,
		AverageTimeFormatted:          formatOptionalAverage(attempt.AverageTimePerQuestionSeconds),
		AltTabCount:                   attempt.AltTabCount,
		Questions:                     questions,
	}
	if participant != nil {
		analysis.ParticipantName = participant.Name
		analysis.ParticipantEmail = participant.Email
	}
	return analysis, nil
}

// formatSeconds renders a duration as "3m 25s".
func formatSeconds(seconds int) string {
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

func formatOptionalSeconds(seconds *int) string {
	if seconds == nil {
		return "N/A"
	}
	return formatSeconds(*seconds)
}

func formatOptionalAverage(seconds *float64) string {
	if seconds == nil {
		return "N/A"
	}
	return formatSeconds(int(*seconds))
}
