package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vigilo-labs/vigilo-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// GetByID retrieves a question by its UUID.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, exam_id, question_text, options, correct_answer, order_num
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.ExamID, &q.QuestionText, &q.Options, &q.CorrectAnswer, &q.OrderNum)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ListByExam retrieves all questions for a given exam, ordered by order_num.
func (r *QuestionRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, question_text, options, correct_answer, order_num
		 FROM questions WHERE exam_id = $1
		 ORDER BY order_num`, examID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.ExamID, &q.QuestionText, &q.Options, &q.CorrectAnswer, &q.OrderNum); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (exam_id, question_text, options, correct_answer, order_num)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		q.ExamID, q.QuestionText, q.Options, q.CorrectAnswer, q.OrderNum,
	).Scan(&q.ID)
}

// Update persists all mutable question fields.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questions
		 SET question_text = $1, options = $2, correct_answer = $3, order_num = $4
		 WHERE id = $5`,
		q.QuestionText, q.Options, q.CorrectAnswer, q.OrderNum, q.ID)
	return err
}

// Delete removes a question.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}

// Reorder rewrites order_num for the given questions in one transaction so a
// partial reorder can never be observed.
func (r *QuestionRepository) Reorder(ctx context.Context, examID uuid.UUID, questionIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, qid := range questionIDs {
		tag, err := tx.Exec(ctx,
			`UPDATE questions SET order_num = $1 WHERE id = $2 AND exam_id = $3`,
			i, qid, examID)
		if err != nil {
			return fmt.Errorf("reorder question %s: %w", qid, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("question %s does not belong to exam %s", qid, examID)
		}
	}

	return tx.Commit(ctx)
}
