package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vigilo-labs/vigilo-backend/internal/model"
)

// ParticipantRepository handles participant data access.
type ParticipantRepository struct {
	pool *pgxpool.Pool
}

// NewParticipantRepository creates a new ParticipantRepository.
func NewParticipantRepository(pool *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

// GetOrCreate upserts a participant by email. A returning participant keeps
// their ID; the stored name is refreshed in case it changed.
func (r *ParticipantRepository) GetOrCreate(ctx context.Context, name, email string) (*model.Participant, error) {
	p := &model.Participant{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO participants (name, email)
		 VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, name, email, created_at`,
		name, email,
	).Scan(&p.ID, &p.Name, &p.Email, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID retrieves a participant by ID.
func (r *ParticipantRepository) GetByID(ctx context.Context, id int) (*model.Participant, error) {
	p := &model.Participant{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, created_at FROM participants WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Email, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}
