package service

import (
	"context"
	"testing"
	"time"
)

func TestAnalysisJoinsQuestions(t *testing.T) {
	h := newHarness(t)
	res := h.start(t)
	ctx := context.Background()

	if err := h.svc.SubmitAnswer(ctx, res.Attempt.ID, h.qID, "Paris", 95); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := h.svc.Terminate(ctx, res.Attempt.ID, res.Attempt.StartTime.Add(3*time.Minute+25*time.Second)); err != nil {
		t.Fatalf("terminate: %v", err)
	}

	analysis, err := h.svc.Analysis(ctx, res.Attempt.ID)
	if err != nil {
		t.Fatalf("analysis: %v", err)
	}

	if analysis.ParticipantName != "Ada" || analysis.ParticipantEmail != "ada@example.com" {
		t.Errorf("participant = %q <%s>", analysis.ParticipantName, analysis.ParticipantEmail)
	}
	if analysis.TotalQuestions != 1 {
		t.Errorf("total questions = %d, want 1", analysis.TotalQuestions)
	}
	if analysis.DurationFormatted != "3m 25s" {
		t.Errorf("duration formatted = %q, want \"3m 25s\"", analysis.DurationFormatted)
	}
	if analysis.AverageTimeFormatted != "1m 35s" {
		t.Errorf("average formatted = %q, want \"1m 35s\"", analysis.AverageTimeFormatted)
	}

	q := analysis.Questions[0]
	if q.QuestionText != "Capital of France?" {
		t.Errorf("question text not joined: %q", q.QuestionText)
	}
	if !q.IsCorrect || q.TimeTakenFormatted != "1m 35s" {
		t.Errorf("question record = %+v", q)
	}
}

func TestAnalysisOfRunningAttempt(t *testing.T) {
	h := newHarness(t)
	res := h.start(t)

	analysis, err := h.svc.Analysis(context.Background(), res.Attempt.ID)
	if err != nil {
		t.Fatalf("analysis: %v", err)
	}

	// Terminal-only fields render as N/A while the attempt is in progress.
	if analysis.DurationFormatted != "N/A" {
		t.Errorf("duration formatted = %q, want \"N/A\"", analysis.DurationFormatted)
	}
	if analysis.AverageTimeFormatted != "N/A" {
		t.Errorf("average formatted = %q, want \"N/A\"", analysis.AverageTimeFormatted)
	}
	if analysis.EndTime != nil {
		t.Error("running attempt must have no end time")
	}
}

func TestAnalysisSurvivesDeletedQuestion(t *testing.T) {
	h := newHarness(t)
	res := h.start(t)
	ctx := context.Background()

	if err := h.svc.SubmitAnswer(ctx, res.Attempt.ID, h.qID, "Paris", 10); err != nil {
		t.Fatalf("submit: %v", err)
	}
	delete(h.qs.questions, h.qID)

	analysis, err := h.svc.Analysis(ctx, res.Attempt.ID)
	if err != nil {
		t.Fatalf("analysis: %v", err)
	}
	if len(analysis.Questions) != 1 {
		t.Fatalf("graded record lost with the question, got %d", len(analysis.Questions))
	}
	q := analysis.Questions[0]
	if q.QuestionText != "" {
		t.Errorf("deleted question should have empty text, got %q", q.QuestionText)
	}
	if !q.IsCorrect || q.SubmittedAnswer != "Paris" {
		t.Errorf("graded snapshot lost: %+v", q)
	}
}

func TestFormatSeconds(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "0m 0s"},
		{59, "0m 59s"},
		{60, "1m 0s"},
		{205, "3m 25s"},
		{3600, "60m 0s"},
	}
	for _, c := range cases {
		if got := formatSeconds(c.in); got != c.want {
			t.Errorf("formatSeconds(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}
