package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/vigilo-labs/vigilo-backend/internal/model"
	"github.com/vigilo-labs/vigilo-backend/internal/proctor"
)

// ─── In-memory fakes ────────────────────────────────────────────────

type fakeAttemptStore struct {
	mu       sync.Mutex
	attempts map[uuid.UUID]*model.ExamAttempt
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{attempts: make(map[uuid.UUID]*model.ExamAttempt)}
}

func (s *fakeAttemptStore) Create(ctx context.Context, a *model.ExamAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uuid.New()
	clone := *a
	s.attempts[a.ID] = &clone
	return nil
}

func (s *fakeAttemptStore) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *a
	return &clone, nil
}

func (s *fakeAttemptStore) FindActive(ctx context.Context, participantID int, examID uuid.UUID) (*model.ExamAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attempts {
		if a.ParticipantID == participantID && a.ExamID == examID && a.EndTime == nil {
			clone := *a
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeAttemptStore) Mutate(ctx context.Context, id uuid.UUID, fn func(*model.ExamAttempt) error) (*model.ExamAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if err := fn(a); err != nil {
		return nil, err
	}
	clone := *a
	return &clone, nil
}

func (s *fakeAttemptStore) ListByParticipant(ctx context.Context, participantID int) ([]model.ExamAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ExamAttempt
	for _, a := range s.attempts {
		if a.ParticipantID == participantID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeExamStore struct {
	exams map[uuid.UUID]*model.Exam
}

func (s *fakeExamStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e, ok := s.exams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return e, nil
}

type fakeQuestionStore struct {
	questions map[uuid.UUID]*model.Question
}

func (s *fakeQuestionStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q, ok := s.questions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return q, nil
}

type fakeParticipantStore struct {
	mu     sync.Mutex
	nextID int
	byMail map[string]*model.Participant
}

func newFakeParticipantStore() *fakeParticipantStore {
	return &fakeParticipantStore{nextID: 1, byMail: make(map[string]*model.Participant)}
}

func (s *fakeParticipantStore) GetOrCreate(ctx context.Context, name, email string) (*model.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.byMail[email]; ok {
		p.Name = name // upsert refreshes the display name
		return p, nil
	}
	p := &model.Participant{ID: s.nextID, Name: name, Email: email, CreatedAt: time.Now()}
	s.nextID++
	s.byMail[email] = p
	return p, nil
}

func (s *fakeParticipantStore) GetByID(ctx context.Context, id int) (*model.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.byMail {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type recordingFeed struct {
	mu     sync.Mutex
	events []AttemptEvent
}

func (f *recordingFeed) PublishAttemptEvent(ctx context.Context, examID uuid.UUID, ev AttemptEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *recordingFeed) byType(t string) []AttemptEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []AttemptEvent
	for _, ev := range f.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// ─── Harness ────────────────────────────────────────────────────────

type harness struct {
	svc      *AttemptService
	attempts *fakeAttemptStore
	exams    *fakeExamStore
	qs       *fakeQuestionStore
	feed     *recordingFeed
	examID   uuid.UUID
	qID      uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	examID := uuid.New()
	qID := uuid.New()

	exams := &fakeExamStore{exams: map[uuid.UUID]*model.Exam{
		examID: {ID: examID, Title: "Trial", Status: model.ExamStatusActive, DurationMinutes: 15},
	}}
	qs := &fakeQuestionStore{questions: map[uuid.UUID]*model.Question{
		qID: {ID: qID, ExamID: examID, QuestionText: "Capital of France?", CorrectAnswer: "Paris"},
	}}

	attempts := newFakeAttemptStore()
	feed := &recordingFeed{}
	svc := NewAttemptService(
		attempts, exams, qs, newFakeParticipantStore(),
		proctor.Noop{}, feed, 50*time.Millisecond, zerolog.Nop(),
	)
	return &harness{svc: svc, attempts: attempts, exams: exams, qs: qs, feed: feed, examID: examID, qID: qID}
}

func (h *harness) start(t *testing.T) *StartResult {
	t.Helper()
	res, err := h.svc.Start(context.Background(), "Ada", "ada@example.com", h.examID, time.Now())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	return res
}

// ─── Tests ──────────────────────────────────────────────────────────

func TestStartCreatesAttempt(t *testing.T) {
	h := newHarness(t)

	res := h.start(t)
	if res.Resumed {
		t.Error("first start must not be a resume")
	}
	if res.Attempt.ID == uuid.Nil {
		t.Error("attempt id not assigned")
	}
	if res.Participant.Email != "ada@example.com" {
		t.Errorf("participant email = %q", res.Participant.Email)
	}
}

func TestStartResumesActiveAttempt(t *testing.T) {
	h := newHarness(t)

	first := h.start(t)
	second, err := h.svc.Start(context.Background(), "Ada Lovelace", "ada@example.com", h.examID, time.Now())
	if err != nil {
		t.Fatalf("second start: %v", err)
	}

	if !second.Resumed {
		t.Error("second start should resume")
	}
	if second.Attempt.ID != first.Attempt.ID {
		t.Errorf("resumed a different attempt: %s != %s", second.Attempt.ID, first.Attempt.ID)
	}
}

func TestStartAfterFinishCreatesNewAttempt(t *testing.T) {
	h := newHarness(t)

	first := h.start(t)
	if _, err := h.svc.Terminate(context.Background(), first.Attempt.ID, time.Now()); err != nil {
		t.Fatalf("terminate: %v", err)
	}

	second := h.start(t)
	if second.Resumed {
		t.Error("start after finish must create a fresh attempt")
	}
	if second.Attempt.ID == first.Attempt.ID {
		t.Error("new attempt reused the finished attempt's id")
	}
}

func TestStartUnknownExam(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Start(context.Background(), "Ada", "ada@example.com", uuid.New(), time.Now())
	if !errors.Is(err, ErrExamNotFound) {
		t.Errorf("err = %v, want ErrExamNotFound", err)
	}
}

func TestStartRespectsAvailabilityWindow(t *testing.T) {
	h := newHarness(t)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	opens := now.Add(2*time.Hour + 30*time.Minute)
	closes := now.Add(4 * time.Hour)
	exam := h.exams.exams[h.examID]
	exam.StartDate = &opens
	exam.EndDate = &closes

	_, err := h.svc.Start(context.Background(), "Ada", "ada@example.com", h.examID, now)
	if !errors.Is(err, ErrExamNotAvailable) {
		t.Fatalf("err = %v, want ErrExamNotAvailable", err)
	}
	if !strings.Contains(err.Error(), "please wait 2h 30m") {
		t.Errorf("message should name the remaining wait, got %q", err.Error())
	}

	_, err = h.svc.Start(context.Background(), "Ada", "ada@example.com", h.examID, closes.Add(time.Minute))
	if !errors.Is(err, ErrExamNotAvailable) {
		t.Fatalf("err after close = %v, want ErrExamNotAvailable", err)
	}
	if !strings.Contains(err.Error(), "ended on") {
		t.Errorf("message should say the exam ended, got %q", err.Error())
	}

	_, err = h.svc.Start(context.Background(), "Ada", "ada@example.com", h.examID, opens.Add(time.Minute))
	if err != nil {
		t.Errorf("start inside window failed: %v", err)
	}
}

func TestStartAllowsDraftExam(t *testing.T) {
	h := newHarness(t)
	h.exams.exams[h.examID].Status = model.ExamStatusDraft

	if _, err := h.svc.Start(context.Background(), "Ada", "ada@example.com", h.examID, time.Now()); err != nil {
		t.Errorf("draft exam should accept attempts: %v", err)
	}

	h.exams.exams[h.examID].Status = model.ExamStatusCompleted
	_, err := h.svc.Start(context.Background(), "Bob", "bob@example.com", h.examID, time.Now())
	if !errors.Is(err, ErrExamNotAvailable) {
		t.Errorf("completed exam err = %v, want ErrExamNotAvailable", err)
	}
}

func TestSubmitAnswerGradesExactMatch(t *testing.T) {
	h := newHarness(t)
	res := h.start(t)
	ctx := context.Background()

	if err := h.svc.SubmitAnswer(ctx, res.Attempt.ID, h.qID, "paris", 10); err != nil {
		t.Fatalf("submit: %v", err)
	}
	a, _ := h.attempts.GetByID(ctx, res.Attempt.ID)
	if a.AnsweredQuestions[0].IsCorrect {
		t.Error("grading must be case-sensitive; \"paris\" is wrong")
	}

	// Resubmission replaces the earlier record.
	if err := h.svc.SubmitAnswer(ctx, res.Attempt.ID, h.qID, "Paris", 25); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	a, _ = h.attempts.GetByID(ctx, res.Attempt.ID)
	if len(a.AnsweredQuestions) != 1 {
		t.Fatalf("expected 1 record after resubmit, got %d", len(a.AnsweredQuestions))
	}
	rec := a.AnsweredQuestions[0]
	if !rec.IsCorrect || rec.SubmittedAnswer != "Paris" || rec.TimeTakenSeconds != 25 {
		t.Errorf("record not replaced: %+v", rec)
	}
	if rec.CorrectAnswer != "Paris" {
		t.Errorf("correct answer snapshot = %q", rec.CorrectAnswer)
	}
}

func TestSubmitAnswerRejectsForeignQuestion(t *testing.T) {
	h := newHarness(t)
	res := h.start(t)

	foreign := uuid.New()
	h.qs.questions[foreign] = &model.Question{ID: foreign, ExamID: uuid.New(), CorrectAnswer: "42"}

	err := h.svc.SubmitAnswer(context.Background(), res.Attempt.ID, foreign, "42", 5)
	if !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("err = %v, want ErrQuestionNotFound", err)
	}
}

func TestSubmitAnswerOnFinishedAttempt(t *testing.T) {
	h := newHarness(t)
	res := h.start(t)
	ctx := context.Background()

	if _, err := h.svc.Terminate(ctx, res.Attempt.ID, time.Now()); err != nil {
		t.Fatalf("terminate: %v", err)
	}

	err := h.svc.SubmitAnswer(ctx, res.Attempt.ID, h.qID, "Paris", 5)
	if !errors.Is(err, ErrAttemptTerminal) {
		t.Errorf("err = %v, want ErrAttemptTerminal", err)
	}
}

func TestViolationLimitForcesFinish(t *testing.T) {
	h := newHarness(t)
	res := h.start(t)
	ctx := context.Background()

	for i := 1; i < model.ViolationLimit; i++ {
		v, err := h.svc.RecordViolation(ctx, res.Attempt.ID, time.Now())
		if err != nil {
			t.Fatalf("violation %d: %v", i, err)
		}
		if v.ExamEnded {
			t.Fatalf("violation %d ended the exam early", i)
		}
		if v.AltTabCount != i {
			t.Errorf("count = %d, want %d", v.AltTabCount, i)
		}
	}

	v, err := h.svc.RecordViolation(ctx, res.Attempt.ID, time.Now())
	if err != nil {
		t.Fatalf("final violation: %v", err)
	}
	if !v.ExamEnded {
		t.Error("reaching the limit must end the exam")
	}

	a, _ := h.attempts.GetByID(ctx, res.Attempt.ID)
	if !a.IsTerminal() {
		t.Error("attempt not finalized after forced finish")
	}
	if a.Score == nil {
		t.Error("forced finish must compute the score")
	}

	// Further violations are rejected, the counter frozen.
	_, err = h.svc.RecordViolation(ctx, res.Attempt.ID, time.Now())
	if !errors.Is(err, ErrAttemptTerminal) {
		t.Errorf("err after forced finish = %v, want ErrAttemptTerminal", err)
	}
}

func TestTerminateIsIdempotent(t *testing.T) {
	h := newHarness(t)
	res := h.start(t)
	ctx := context.Background()

	if err := h.svc.SubmitAnswer(ctx, res.Attempt.ID, h.qID, "Paris", 30); err != nil {
		t.Fatalf("submit: %v", err)
	}

	first, err := h.svc.Terminate(ctx, res.Attempt.ID, time.Now())
	if err != nil {
		t.Fatalf("terminate: %v", err)
	}
	if first.Score == nil || *first.Score != 1 {
		t.Errorf("score = %v, want 1", first.Score)
	}

	second, err := h.svc.Terminate(ctx, res.Attempt.ID, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("second terminate: %v", err)
	}
	if !second.EndTime.Equal(*first.EndTime) {
		t.Error("second terminate changed the end time")
	}
	if *second.DurationSeconds != *first.DurationSeconds {
		t.Error("second terminate changed the duration")
	}

	// Only one finished event on the feed.
	if got := len(h.feed.byType(AttemptEventFinished)); got != 1 {
		t.Errorf("finished events = %d, want 1", got)
	}
}

func TestTerminateUnknownAttempt(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Terminate(context.Background(), uuid.New(), time.Now())
	if !errors.Is(err, ErrAttemptNotFound) {
		t.Errorf("err = %v, want ErrAttemptNotFound", err)
	}
}

func TestLifecycleEventsPublished(t *testing.T) {
	h := newHarness(t)
	res := h.start(t)
	ctx := context.Background()

	h.svc.SubmitAnswer(ctx, res.Attempt.ID, h.qID, "Paris", 10)
	h.svc.RecordViolation(ctx, res.Attempt.ID, time.Now())
	h.svc.Terminate(ctx, res.Attempt.ID, time.Now())

	for _, typ := range []string{AttemptEventStarted, AttemptEventAnswer, AttemptEventViolation, AttemptEventFinished} {
		if len(h.feed.byType(typ)) != 1 {
			t.Errorf("expected exactly one %q event", typ)
		}
	}
}
