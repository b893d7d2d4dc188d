package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DashboardRepository handles host dashboard aggregate queries.
type DashboardRepository struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository creates a new DashboardRepository.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// GlobalStats holds the platform-wide dashboard counters.
type GlobalStats struct {
	TotalParticipants  int   `json:"total_participants"`
	ActiveParticipants int   `json:"active_participants"`
	TotalExams         int   `json:"total_exams"`
	TotalViolations    int64 `json:"total_violations"`
}

// GetGlobalStats retrieves the high-level metrics for the dashboard.
func (r *DashboardRepository) GetGlobalStats(ctx context.Context) (*GlobalStats, error) {
	s := &GlobalStats{}
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM exam_attempts),
			(SELECT COUNT(*) FROM exam_attempts WHERE end_time IS NULL),
			(SELECT COUNT(*) FROM exams),
			(SELECT COALESCE(SUM(alt_tab_count), 0) FROM exam_attempts)`,
	).Scan(&s.TotalParticipants, &s.ActiveParticipants, &s.TotalExams, &s.TotalViolations)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ExamStats holds real-time per-exam counters.
type ExamStats struct {
	TotalParticipants  int   `json:"total_participants"`
	ActiveParticipants int   `json:"active_participants"`
	TotalViolations    int64 `json:"total_violations"`
	CompletedAttempts  int   `json:"completed_attempts"`
	CompletionRate     int   `json:"completion_rate"`
}

// GetExamStats retrieves per-exam attempt counters in one aggregate query.
func (r *DashboardRepository) GetExamStats(ctx context.Context, examID uuid.UUID) (*ExamStats, error) {
	s := &ExamStats{}
	err := r.pool.QueryRow(ctx,
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE end_time IS NULL),
			COALESCE(SUM(alt_tab_count), 0),
			COUNT(*) FILTER (WHERE end_time IS NOT NULL)
		 FROM exam_attempts
		 WHERE exam_id = $1`, examID,
	).Scan(&s.TotalParticipants, &s.ActiveParticipants, &s.TotalViolations, &s.CompletedAttempts)
	if err != nil {
		return nil, err
	}
	if s.TotalParticipants > 0 {
		s.CompletionRate = s.CompletedAttempts * 100 / s.TotalParticipants
	}
	return s, nil
}

// RecentViolation is one alt-tab offender row for the dashboard feed.
type RecentViolation struct {
	AttemptID        uuid.UUID `json:"attempt_id"`
	ParticipantName  string    `json:"participant_name"`
	ParticipantEmail string    `json:"participant_email"`
	Count            int       `json:"count"`
	Timestamp        string    `json:"timestamp"`
}

// ListRecentViolations retrieves the latest attempts with at least one violation.
func (r *DashboardRepository) ListRecentViolations(ctx context.Context, limit int) ([]RecentViolation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, p.name, p.email, a.alt_tab_count, to_char(a.start_time, 'YYYY-MM-DD"T"HH24:MI:SSOF')
		 FROM exam_attempts a
		 JOIN participants p ON a.participant_id = p.id
		 WHERE a.alt_tab_count > 0
		 ORDER BY a.start_time DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var violations []RecentViolation
	for rows.Next() {
		var v RecentViolation
		if err := rows.Scan(&v.AttemptID, &v.ParticipantName, &v.ParticipantEmail, &v.Count, &v.Timestamp); err != nil {
			return nil, err
		}
		violations = append(violations, v)
	}
	return violations, rows.Err()
}
