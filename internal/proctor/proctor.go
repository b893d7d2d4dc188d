// Package proctor bridges the backend to the native OS-level proctor agent.
//
// The agent is a best-effort collaborator: it watches the participant's
// machine for forbidden key combinations and window switches while an attempt
// is running. Its only contract with the attempt lifecycle is Start/Stop per
// attempt id; the events it reports are informational and never feed the
// attempt's own violation counter.
package proctor

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is one observation reported by the native agent.
type Event struct {
	AttemptID   uuid.UUID `json:"attempt_id"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Controller starts and stops native monitoring for an attempt.
// Implementations must be safe for concurrent use; callers wrap every call
// with a short timeout so a misbehaving agent cannot stall a state transition.
type Controller interface {
	Start(ctx context.Context, attemptID uuid.UUID) error
	Stop(ctx context.Context, attemptID uuid.UUID) ([]Event, error)
}
