package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRecordAnswerReplacesSameQuestion(t *testing.T) {
	a := &ExamAttempt{StartTime: time.Now(), AnsweredQuestions: []AnswerRecord{}}
	qID := uuid.New()

	a.RecordAnswer(AnswerRecord{QuestionID: qID, SubmittedAnswer: "London", IsCorrect: false, TimeTakenSeconds: 10})
	a.RecordAnswer(AnswerRecord{QuestionID: uuid.New(), SubmittedAnswer: "Stack", IsCorrect: true, TimeTakenSeconds: 5})
	a.RecordAnswer(AnswerRecord{QuestionID: qID, SubmittedAnswer: "Paris", IsCorrect: true, TimeTakenSeconds: 20})

	if len(a.AnsweredQuestions) != 2 {
		t.Fatalf("expected 2 records, got %d", len(a.AnsweredQuestions))
	}
	first := a.AnsweredQuestions[0]
	if first.QuestionID != qID || first.SubmittedAnswer != "Paris" || !first.IsCorrect {
		t.Errorf("replacement did not keep position or update fields: %+v", first)
	}
}

func TestFinalizeDerivesResults(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	a := &ExamAttempt{
		StartTime: start,
		AnsweredQuestions: []AnswerRecord{
			{QuestionID: uuid.New(), IsCorrect: true, TimeTakenSeconds: 30},
			{QuestionID: uuid.New(), IsCorrect: false, TimeTakenSeconds: 50},
			{QuestionID: uuid.New(), IsCorrect: true, TimeTakenSeconds: 40},
			{QuestionID: uuid.New(), IsCorrect: true, TimeTakenSeconds: 20},
		},
	}

	a.Finalize(start.Add(10*time.Minute + 30*time.Second))

	if !a.IsTerminal() {
		t.Fatal("attempt should be terminal after Finalize")
	}
	if a.DurationSeconds == nil || *a.DurationSeconds != 630 {
		t.Errorf("duration = %v, want 630", a.DurationSeconds)
	}
	if a.Score == nil || *a.Score != 3 {
		t.Errorf("score = %v, want 3", a.Score)
	}
	if a.AverageTimePerQuestionSeconds == nil || *a.AverageTimePerQuestionSeconds != 35.0 {
		t.Errorf("average = %v, want 35.0", a.AverageTimePerQuestionSeconds)
	}
}

func TestFinalizeWithNoAnswers(t *testing.T) {
	a := &ExamAttempt{StartTime: time.Now(), AnsweredQuestions: []AnswerRecord{}}
	a.Finalize(a.StartTime.Add(time.Minute))

	if a.Score == nil || *a.Score != 0 {
		t.Errorf("score = %v, want 0", a.Score)
	}
	// The average is stored as exactly zero, not left nil.
	if a.AverageTimePerQuestionSeconds == nil || *a.AverageTimePerQuestionSeconds != 0.0 {
		t.Errorf("average = %v, want 0.0", a.AverageTimePerQuestionSeconds)
	}
}

func TestFinalizeIsIdempotent(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	a := &ExamAttempt{
		StartTime: start,
		AnsweredQuestions: []AnswerRecord{
			{QuestionID: uuid.New(), IsCorrect: true, TimeTakenSeconds: 10},
		},
	}

	a.Finalize(start.Add(time.Minute))
	firstEnd := *a.EndTime
	firstDuration := *a.DurationSeconds

	a.Finalize(start.Add(time.Hour))

	if !a.EndTime.Equal(firstEnd) {
		t.Errorf("end time changed on second Finalize: %v != %v", a.EndTime, firstEnd)
	}
	if *a.DurationSeconds != firstDuration {
		t.Errorf("duration changed on second Finalize: %d != %d", *a.DurationSeconds, firstDuration)
	}
}

func TestIsTerminal(t *testing.T) {
	a := &ExamAttempt{StartTime: time.Now()}
	if a.IsTerminal() {
		t.Error("fresh attempt must not be terminal")
	}
	end := time.Now()
	a.EndTime = &end
	if !a.IsTerminal() {
		t.Error("attempt with end time must be terminal")
	}
}
