package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vigilo-labs/vigilo-backend/internal/config"
)

// Attempt event types published to the live monitor feed.
const (
	AttemptEventStarted   = "started"
	AttemptEventAnswer    = "answer"
	AttemptEventViolation = "violation"
	AttemptEventFinished  = "finished"
)

// AttemptEvent is one lifecycle event for an exam's live monitor.
type AttemptEvent struct {
	Type            string    `json:"type"`
	AttemptID       uuid.UUID `json:"attempt_id"`
	ParticipantID   int       `json:"participant_id"`
	ParticipantName string    `json:"participant_name,omitempty"`
	AnsweredCount   int       `json:"answered_count,omitempty"`
	AltTabCount     int       `json:"alt_tab_count,omitempty"`
	ExamEnded       bool      `json:"exam_ended,omitempty"`
	Score           *int      `json:"score,omitempty"`
}

// LiveFeed fans attempt events out to host monitors. Publishing is
// best-effort and must never fail or block an attempt transition.
type LiveFeed interface {
	PublishAttemptEvent(ctx context.Context, examID uuid.UUID, ev AttemptEvent)
}

// RedisLiveFeed publishes attempt events on the exam's Redis monitor channel,
// where the host WebSocket handler picks them up.
type RedisLiveFeed struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisLiveFeed creates a RedisLiveFeed.
func NewRedisLiveFeed(rdb *redis.Client, log zerolog.Logger) *RedisLiveFeed {
	return &RedisLiveFeed{
		rdb: rdb,
		log: log.With().Str("component", "live_feed").Logger(),
	}
}

// PublishAttemptEvent publishes the event; failures are logged and dropped.
func (f *RedisLiveFeed) PublishAttemptEvent(ctx context.Context, examID uuid.UUID, ev AttemptEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		f.log.Error().Err(err).Msg("Marshal attempt event")
		return
	}
	channel := config.CacheKey.ExamMonitorChannel(examID.String())
	if err := f.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		f.log.Warn().Err(err).Str("channel", channel).Msg("Publish attempt event failed")
	}
}

// NoopLiveFeed discards all events. Used in tests and one-off commands.
type NoopLiveFeed struct{}

func (NoopLiveFeed) PublishAttemptEvent(ctx context.Context, examID uuid.UUID, ev AttemptEvent) {}
