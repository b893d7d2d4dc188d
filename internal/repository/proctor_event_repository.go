package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vigilo-labs/vigilo-backend/internal/proctor"
)

// ProctorEventRepository persists native agent observations.
type ProctorEventRepository struct {
	pool *pgxpool.Pool
}

// NewProctorEventRepository creates a new ProctorEventRepository.
func NewProctorEventRepository(pool *pgxpool.Pool) *ProctorEventRepository {
	return &ProctorEventRepository{pool: pool}
}

// BulkInsert writes a batch of agent events with a single UNNEST statement.
func (r *ProctorEventRepository) BulkInsert(ctx context.Context, events []proctor.Event) error {
	if len(events) == 0 {
		return nil
	}

	n := len(events)
	attemptIDs := make([]uuid.UUID, 0, n)
	types := make([]string, 0, n)
	descriptions := make([]string, 0, n)
	occurredAts := make([]time.Time, 0, n)

	for _, ev := range events {
		attemptIDs = append(attemptIDs, ev.AttemptID)
		types = append(types, ev.EventType)
		descriptions = append(descriptions, ev.Description)
		occurredAts = append(occurredAts, ev.OccurredAt)
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO proctor_events (attempt_id, event_type, description, occurred_at)
		 SELECT * FROM UNNEST($1::uuid[], $2::text[], $3::text[], $4::timestamptz[])`,
		attemptIDs, types, descriptions, occurredAts)
	return err
}

// ListByAttempt retrieves all agent events recorded for one attempt.
func (r *ProctorEventRepository) ListByAttempt(ctx context.Context, attemptID uuid.UUID) ([]proctor.Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT attempt_id, event_type, description, occurred_at
		 FROM proctor_events
		 WHERE attempt_id = $1
		 ORDER BY occurred_at`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []proctor.Event
	for rows.Next() {
		var ev proctor.Event
		if err := rows.Scan(&ev.AttemptID, &ev.EventType, &ev.Description, &ev.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
