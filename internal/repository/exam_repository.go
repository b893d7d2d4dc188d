package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vigilo-labs/vigilo-backend/internal/model"
)

const examColumns = `e.id, e.title, e.description, e.duration_minutes,
	(SELECT COUNT(*) FROM questions q WHERE q.exam_id = e.id),
	e.start_date, e.end_date, e.enable_monitoring, e.status, e.created_at, e.updated_at`

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams e WHERE e.id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.Description, &e.DurationMinutes, &e.QuestionCount,
		&e.StartDate, &e.EndDate, &e.EnableMonitoring, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListOpen retrieves exams participants may join (draft or active).
func (r *ExamRepository) ListOpen(ctx context.Context) ([]model.Exam, error) {
	return r.list(ctx,
		`SELECT `+examColumns+`
		 FROM exams e
		 WHERE e.status IN ($1, $2)
		 ORDER BY e.created_at DESC`,
		model.ExamStatusDraft, model.ExamStatusActive)
}

// List retrieves all exams, newest first, with pagination.
func (r *ExamRepository) List(ctx context.Context, page, perPage int) ([]model.Exam, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM exams`).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	exams, err := r.list(ctx,
		`SELECT `+examColumns+`
		 FROM exams e
		 ORDER BY e.created_at DESC
		 LIMIT $1 OFFSET $2`, perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	return exams, total, nil
}

// Create inserts a new exam and fills in its generated fields.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (title, description, duration_minutes, start_date, end_date, enable_monitoring, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		e.Title, e.Description, e.DurationMinutes, e.StartDate, e.EndDate, e.EnableMonitoring, e.Status,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// Update persists all mutable exam fields.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams
		 SET title = $1, description = $2, duration_minutes = $3, start_date = $4,
		     end_date = $5, enable_monitoring = $6, status = $7, updated_at = NOW()
		 WHERE id = $8`,
		e.Title, e.Description, e.DurationMinutes, e.StartDate, e.EndDate,
		e.EnableMonitoring, e.Status, e.ID)
	return err
}

// UpdateStatus changes only the exam status.
func (r *ExamRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ExamStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	return err
}

// Delete removes an exam and, via ON DELETE CASCADE, its questions.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	return err
}

func (r *ExamRepository) list(ctx context.Context, query string, args ...any) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.DurationMinutes, &e.QuestionCount,
			&e.StartDate, &e.EndDate, &e.EnableMonitoring, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}
