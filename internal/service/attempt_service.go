package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/vigilo-labs/vigilo-backend/internal/model"
	"github.com/vigilo-labs/vigilo-backend/internal/proctor"
)

// AttemptStore is the persistence surface the attempt lifecycle needs.
// *repository.AttemptRepository satisfies it; tests use an in-memory fake.
type AttemptStore interface {
	Create(ctx context.Context, a *model.ExamAttempt) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ExamAttempt, error)
	FindActive(ctx context.Context, participantID int, examID uuid.UUID) (*model.ExamAttempt, error)
	// Mutate applies fn to the attempt under a per-row lock and persists the
	// result. Implementations must serialize concurrent calls per attempt id.
	Mutate(ctx context.Context, id uuid.UUID, fn func(*model.ExamAttempt) error) (*model.ExamAttempt, error)
	ListByParticipant(ctx context.Context, participantID int) ([]model.ExamAttempt, error)
}

// ExamStore supplies exam definitions; read-only from the lifecycle's view.
type ExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
}

// QuestionStore supplies question definitions; read-only from the lifecycle's view.
type QuestionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error)
}

// ParticipantStore resolves participants by identity.
type ParticipantStore interface {
	GetOrCreate(ctx context.Context, name, email string) (*model.Participant, error)
	GetByID(ctx context.Context, id int) (*model.Participant, error)
}

// AttemptService owns the attempt state machine: start, answer recording,
// violation counting, termination and scoring.
type AttemptService struct {
	attempts       AttemptStore
	exams          ExamStore
	questions      QuestionStore
	participants   ParticipantStore
	proctorCtl     proctor.Controller
	feed           LiveFeed
	proctorTimeout time.Duration
	log            zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	attempts AttemptStore,
	exams ExamStore,
	questions QuestionStore,
	participants ParticipantStore,
	proctorCtl proctor.Controller,
	feed LiveFeed,
	proctorTimeout time.Duration,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		attempts:       attempts,
		exams:          exams,
		questions:      questions,
		participants:   participants,
		proctorCtl:     proctorCtl,
		feed:           feed,
		proctorTimeout: proctorTimeout,
		log:            log.With().Str("component", "attempt_service").Logger(),
	}
}

// StartResult is the outcome of Start.
type StartResult struct {
	Attempt     *model.ExamAttempt
	Participant *model.Participant
	Resumed     bool
}

// Start validates exam availability, upserts the participant and creates a new
// attempt, or resumes the participant's unterminated attempt for this exam.
// Native monitoring is activated best-effort; its failure never fails the start.
func (s *AttemptService) Start(ctx context.Context, name, email string, examID uuid.UUID, now time.Time) (*StartResult, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("get exam: %w", err)
	}

	if err := checkAvailability(exam, now); err != nil {
		return nil, err
	}

	participant, err := s.participants.GetOrCreate(ctx, name, email)
	if err != nil {
		return nil, fmt.Errorf("get or create participant: %w", err)
	}

	// Resume semantics: one live attempt per (participant, exam).
	existing, err := s.attempts.FindActive(ctx, participant.ID, examID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check existing attempt: %w", err)
	}
	if existing != nil {
		return &StartResult{Attempt: existing, Participant: participant, Resumed: true}, nil
	}

	attempt := &model.ExamAttempt{
		ParticipantID:     participant.ID,
		ExamID:            examID,
		StartTime:         now,
		AnsweredQuestions: []model.AnswerRecord{},
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	if exam.EnableMonitoring {
		s.startMonitoring(attempt.ID)
	}

	s.feed.PublishAttemptEvent(ctx, examID, AttemptEvent{
		Type:            AttemptEventStarted,
		AttemptID:       attempt.ID,
		ParticipantID:   participant.ID,
		ParticipantName: participant.Name,
	})

	return &StartResult{Attempt: attempt, Participant: participant, Resumed: false}, nil
}

// SubmitAnswer grades a submission against the question's stored correct
// answer (exact, case-sensitive match) and records it on the attempt. A second
// submission for the same question replaces the earlier record.
func (s *AttemptService) SubmitAnswer(ctx context.Context, attemptID, questionID uuid.UUID, answer string, timeTakenSeconds int) error {
	attempt, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return err
	}

	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("get question: %w", err)
	}
	if question.ExamID != attempt.ExamID {
		return ErrQuestionNotFound
	}

	record := model.AnswerRecord{
		QuestionID:       questionID,
		SubmittedAnswer:  answer,
		CorrectAnswer:    question.CorrectAnswer,
		IsCorrect:        answer == question.CorrectAnswer,
		TimeTakenSeconds: timeTakenSeconds,
	}

	updated, err := s.attempts.Mutate(ctx, attemptID, func(a *model.ExamAttempt) error {
		if a.IsTerminal() {
			return ErrAttemptTerminal
		}
		a.RecordAnswer(record)
		return nil
	})
	if err != nil {
		return s.mapAttemptErr(err)
	}

	s.feed.PublishAttemptEvent(ctx, attempt.ExamID, AttemptEvent{
		Type:          AttemptEventAnswer,
		AttemptID:     attemptID,
		ParticipantID: attempt.ParticipantID,
		AnsweredCount: len(updated.AnsweredQuestions),
	})
	return nil
}

// ViolationResult is the outcome of RecordViolation, returned so the client
// UI can warn the participant or show the forced-finish screen.
type ViolationResult struct {
	AltTabCount int  `json:"alt_tab_count"`
	ExamEnded   bool `json:"exam_ended"`
}

// RecordViolation increments the attempt's alt-tab counter. Reaching the
// violation limit force-finishes the attempt through the same finalization
// path as an explicit finish.
func (s *AttemptService) RecordViolation(ctx context.Context, attemptID uuid.UUID, now time.Time) (*ViolationResult, error) {
	ended := false
	updated, err := s.attempts.Mutate(ctx, attemptID, func(a *model.ExamAttempt) error {
		if a.IsTerminal() {
			return ErrAttemptTerminal
		}
		a.AltTabCount++
		if a.AltTabCount >= model.ViolationLimit {
			a.Finalize(now)
			ended = true
		}
		return nil
	})
	if err != nil {
		return nil, s.mapAttemptErr(err)
	}

	if ended {
		s.stopMonitoring(updated.ID)
	}

	s.feed.PublishAttemptEvent(ctx, updated.ExamID, AttemptEvent{
		Type:          AttemptEventViolation,
		AttemptID:     updated.ID,
		ParticipantID: updated.ParticipantID,
		AltTabCount:   updated.AltTabCount,
		ExamEnded:     ended,
	})

	return &ViolationResult{AltTabCount: updated.AltTabCount, ExamEnded: ended}, nil
}

// Terminate finalizes the attempt: end time, duration, score and per-question
// average are derived exactly once. Terminating an already-terminal attempt is
// a no-op returning the stored terminal state, which makes a manual finish
// racing the violation auto-finish harmless.
func (s *AttemptService) Terminate(ctx context.Context, attemptID uuid.UUID, now time.Time) (*model.ExamAttempt, error) {
	finished := false
	updated, err := s.attempts.Mutate(ctx, attemptID, func(a *model.ExamAttempt) error {
		if a.IsTerminal() {
			return nil
		}
		a.Finalize(now)
		finished = true
		return nil
	})
	if err != nil {
		return nil, s.mapAttemptErr(err)
	}

	if finished {
		s.stopMonitoring(updated.ID)
		s.feed.PublishAttemptEvent(ctx, updated.ExamID, AttemptEvent{
			Type:          AttemptEventFinished,
			AttemptID:     updated.ID,
			ParticipantID: updated.ParticipantID,
			Score:         updated.Score,
		})
	}

	return updated, nil
}

// GetResult retrieves a single attempt.
func (s *AttemptService) GetResult(ctx context.Context, attemptID uuid.UUID) (*model.ExamAttempt, error) {
	return s.getAttempt(ctx, attemptID)
}

// ListParticipantResults retrieves all attempts of one participant.
func (s *AttemptService) ListParticipantResults(ctx context.Context, participantID int) ([]model.ExamAttempt, error) {
	attempts, err := s.attempts.ListByParticipant(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}

// ────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ────────────────────────────────────────────────────────────────────────────

func (s *AttemptService) getAttempt(ctx context.Context, attemptID uuid.UUID) (*model.ExamAttempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, s.mapAttemptErr(err)
	}
	return attempt, nil
}

func (s *AttemptService) mapAttemptErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAttemptNotFound
	}
	return err
}

// startMonitoring asks the native agent to watch the attempt. Best-effort:
// runs detached with its own deadline so agent latency cannot stall the start.
func (s *AttemptService) startMonitoring(attemptID uuid.UUID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.proctorTimeout)
		defer cancel()
		if err := s.proctorCtl.Start(ctx, attemptID); err != nil {
			s.log.Warn().Err(err).Str("attempt_id", attemptID.String()).Msg("Proctor agent activation failed")
			return
		}
		s.log.Debug().Str("attempt_id", attemptID.String()).Msg("Proctor agent activated")
	}()
}

// stopMonitoring deactivates the agent and logs the events it collected.
// The events are informational only; they never feed alt_tab_count.
func (s *AttemptService) stopMonitoring(attemptID uuid.UUID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.proctorTimeout)
		defer cancel()
		events, err := s.proctorCtl.Stop(ctx, attemptID)
		if err != nil {
			s.log.Warn().Err(err).Str("attempt_id", attemptID.String()).Msg("Proctor agent deactivation failed")
			return
		}
		s.log.Info().
			Str("attempt_id", attemptID.String()).
			Int("agent_events", len(events)).
			Msg("Proctor agent deactivated")
	}()
}

// checkAvailability enforces the exam's status and availability window.
func checkAvailability(exam *model.Exam, now time.Time) error {
	if !exam.OpenForTaking() {
		return fmt.Errorf("%w: status is %s", ErrExamNotAvailable, exam.Status)
	}
	if exam.StartDate != nil && now.Before(*exam.StartDate) {
		wait := exam.StartDate.Sub(now)
		hours := int(wait.Hours())
		minutes := int(wait.Minutes()) % 60
		return fmt.Errorf("%w: exam has not started yet, please wait %dh %dm until %s",
			ErrExamNotAvailable, hours, minutes, exam.StartDate.UTC().Format("2006-01-02 15:04 UTC"))
	}
	if exam.EndDate != nil && now.After(*exam.EndDate) {
		return fmt.Errorf("%w: exam ended on %s",
			ErrExamNotAvailable, exam.EndDate.UTC().Format("2006-01-02 15:04 UTC"))
	}
	return nil
}
