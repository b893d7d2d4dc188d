package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vigilo-labs/vigilo-backend/internal/config"
	"github.com/vigilo-labs/vigilo-backend/internal/proctor"
	"github.com/vigilo-labs/vigilo-backend/internal/repository"
)

const (
	EventBatchSize    = 50
	EventBatchTimeout = 2 * time.Second
	EventPollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// ProctorEventWorker drains native agent events from the Redis queue into
// PostgreSQL. The agent pushes one JSON event per LPUSH; the worker batches
// them to keep insert pressure low during an exam wave.
type ProctorEventWorker struct {
	events *repository.ProctorEventRepository
	rdb    *redis.Client
	log    zerolog.Logger
}

// NewProctorEventWorker creates a new ProctorEventWorker.
func NewProctorEventWorker(events *repository.ProctorEventRepository, rdb *redis.Client, log zerolog.Logger) *ProctorEventWorker {
	return &ProctorEventWorker{
		events: events,
		rdb:    rdb,
		log:    log.With().Str("component", "proctor_event_worker").Logger(),
	}
}

// Start runs the drain loop until ctx is cancelled, flushing the remaining
// batch on shutdown.
func (w *ProctorEventWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ProctorEventWorker started")

	batch := make([]proctor.Event, 0, EventBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= EventBatchSize || time.Since(lastFlush) >= EventBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, EventPollTimeout, config.WorkerKey.ProctorEventsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var ev proctor.Event
			if err := json.Unmarshal([]byte(item[1]), &ev); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, ev)
		}
	}
}

// flushSafe persists a batch, requeueing every event that could not be stored
// so nothing is lost across a database hiccup.
func (w *ProctorEventWorker) flushSafe(ctx context.Context, batch []proctor.Event) {
	if len(batch) == 0 {
		return
	}

	if err := w.events.BulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk event insert failed, requeueing")
		for _, ev := range batch {
			raw, _ := json.Marshal(ev)
			w.rdb.RPush(ctx, config.WorkerKey.ProctorEventsQueue, raw)
		}
	}
}
