package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vigilo-labs/vigilo-backend/internal/model"
)

const attemptColumns = `id, participant_id, exam_id, start_time, end_time,
	duration_seconds, alt_tab_count, score, average_time_per_question_seconds,
	answered_questions`

// AttemptSummary combines participant data with their attempt, for host views.
type AttemptSummary struct {
	AttemptID        uuid.UUID  `json:"attempt_id"`
	ParticipantID    int        `json:"participant_id"`
	ParticipantName  string     `json:"participant_name"`
	ParticipantEmail string     `json:"participant_email"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	Score            *int       `json:"score,omitempty"`
	AltTabCount      int        `json:"alt_tab_count"`
	AnsweredCount    int        `json:"answered_count"`
}

// AttemptRepository handles exam attempt data access.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// Create inserts a new attempt and fills in its generated ID.
func (r *AttemptRepository) Create(ctx context.Context, a *model.ExamAttempt) error {
	answers, err := json.Marshal(a.AnsweredQuestions)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_attempts (participant_id, exam_id, start_time, alt_tab_count, answered_questions)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		a.ParticipantID, a.ExamID, a.StartTime, a.AltTabCount, answers,
	).Scan(&a.ID)
}

// GetByID retrieves an attempt by its UUID.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamAttempt, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM exam_attempts WHERE id = $1`, id)
	return scanAttempt(row)
}

// FindActive retrieves the unterminated attempt for a participant-exam pair,
// or pgx.ErrNoRows when none is in progress.
func (r *AttemptRepository) FindActive(ctx context.Context, participantID int, examID uuid.UUID) (*model.ExamAttempt, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+`
		 FROM exam_attempts
		 WHERE participant_id = $1 AND exam_id = $2 AND end_time IS NULL
		 ORDER BY start_time DESC
		 LIMIT 1`,
		participantID, examID)
	return scanAttempt(row)
}

// Mutate applies fn to the attempt inside a transaction holding a row lock.
// This serializes concurrent per-attempt writes (answer, violation, finish)
// across all server instances: the second writer blocks on FOR UPDATE and then
// sees the first writer's result, which is what makes finalization idempotent
// under a race. The updated attempt is returned.
func (r *AttemptRepository) Mutate(ctx context.Context, id uuid.UUID, fn func(*model.ExamAttempt) error) (*model.ExamAttempt, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM exam_attempts WHERE id = $1 FOR UPDATE`, id)
	attempt, err := scanAttempt(row)
	if err != nil {
		return nil, err
	}

	if err := fn(attempt); err != nil {
		return nil, err
	}

	answers, err := json.Marshal(attempt.AnsweredQuestions)
	if err != nil {
		return nil, fmt.Errorf("marshal answers: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE exam_attempts
		 SET end_time = $1,
		     duration_seconds = $2,
		     alt_tab_count = $3,
		     score = $4,
		     average_time_per_question_seconds = $5,
		     answered_questions = $6
		 WHERE id = $7`,
		attempt.EndTime, attempt.DurationSeconds, attempt.AltTabCount,
		attempt.Score, attempt.AverageTimePerQuestionSeconds, answers, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("update attempt: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return attempt, nil
}

// ListByParticipant retrieves all attempts for a given participant.
func (r *AttemptRepository) ListByParticipant(ctx context.Context, participantID int) ([]model.ExamAttempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+attemptColumns+`
		 FROM exam_attempts
		 WHERE participant_id = $1
		 ORDER BY start_time DESC`, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.ExamAttempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, *a)
	}
	return attempts, rows.Err()
}

// ListByExam retrieves attempt summaries for one exam, newest first.
func (r *AttemptRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]AttemptSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, p.id, p.name, p.email, a.start_time, a.end_time,
		        a.score, a.alt_tab_count, jsonb_array_length(a.answered_questions)
		 FROM exam_attempts a
		 JOIN participants p ON a.participant_id = p.id
		 WHERE a.exam_id = $1
		 ORDER BY a.start_time DESC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []AttemptSummary
	for rows.Next() {
		var s AttemptSummary
		if err := rows.Scan(
			&s.AttemptID, &s.ParticipantID, &s.ParticipantName, &s.ParticipantEmail,
			&s.StartTime, &s.EndTime, &s.Score, &s.AltTabCount, &s.AnsweredCount,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// ListAll retrieves attempt summaries across every exam, newest first.
func (r *AttemptRepository) ListAll(ctx context.Context, limit int) ([]AttemptSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, p.id, p.name, p.email, a.start_time, a.end_time,
		        a.score, a.alt_tab_count, jsonb_array_length(a.answered_questions)
		 FROM exam_attempts a
		 JOIN participants p ON a.participant_id = p.id
		 ORDER BY a.start_time DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []AttemptSummary
	for rows.Next() {
		var s AttemptSummary
		if err := rows.Scan(
			&s.AttemptID, &s.ParticipantID, &s.ParticipantName, &s.ParticipantEmail,
			&s.StartTime, &s.EndTime, &s.Score, &s.AltTabCount, &s.AnsweredCount,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// scanAttempt reads one attempt row, decoding the JSONB answer sequence.
func scanAttempt(row pgx.Row) (*model.ExamAttempt, error) {
	a := &model.ExamAttempt{}
	var answers []byte
	err := row.Scan(
		&a.ID, &a.ParticipantID, &a.ExamID, &a.StartTime, &a.EndTime,
		&a.DurationSeconds, &a.AltTabCount, &a.Score,
		&a.AverageTimePerQuestionSeconds, &answers,
	)
	if err != nil {
		return nil, err
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &a.AnsweredQuestions); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
	}
	if a.AnsweredQuestions == nil {
		a.AnsweredQuestions = []model.AnswerRecord{}
	}
	return a, nil
}
