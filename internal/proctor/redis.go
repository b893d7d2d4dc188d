package proctor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vigilo-labs/vigilo-backend/internal/config"
)

// command is the wire format published to the agent command channel.
type command struct {
	Action    string `json:"action"` // "start" or "stop"
	AttemptID string `json:"attempt_id"`
}

// RedisController reaches the native agent over Redis: commands go out on a
// PubSub channel, collected events come back on a per-attempt list the agent
// fills while monitoring.
type RedisController struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisController creates a RedisController.
func NewRedisController(rdb *redis.Client, log zerolog.Logger) *RedisController {
	return &RedisController{
		rdb: rdb,
		log: log.With().Str("component", "proctor_bridge").Logger(),
	}
}

// Start asks the agent to begin monitoring the attempt.
func (c *RedisController) Start(ctx context.Context, attemptID uuid.UUID) error {
	return c.publish(ctx, command{Action: "start", AttemptID: attemptID.String()})
}

// Stop asks the agent to stop monitoring and drains the events it collected.
func (c *RedisController) Stop(ctx context.Context, attemptID uuid.UUID) ([]Event, error) {
	if err := c.publish(ctx, command{Action: "stop", AttemptID: attemptID.String()}); err != nil {
		return nil, err
	}

	key := config.CacheKey.ProctorAttemptEventsKey(attemptID.String())
	raw, err := c.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("drain agent events: %w", err)
	}
	c.rdb.Del(ctx, key)

	events := make([]Event, 0, len(raw))
	for _, item := range raw {
		var ev Event
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			c.log.Warn().Err(err).Msg("Skipping malformed agent event")
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (c *RedisController) publish(ctx context.Context, cmd command) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}
	if err := c.rdb.Publish(ctx, config.CacheKey.ProctorCommandChannel(), payload).Err(); err != nil {
		return fmt.Errorf("publish %s command: %w", cmd.Action, err)
	}
	return nil
}
