package proctor

import (
	"context"

	"github.com/google/uuid"
)

// Noop is a Controller for agentless deployments and tests.
type Noop struct{}

func (Noop) Start(ctx context.Context, attemptID uuid.UUID) error {
	return nil
}

func (Noop) Stop(ctx context.Context, attemptID uuid.UUID) ([]Event, error) {
	return nil, nil
}
