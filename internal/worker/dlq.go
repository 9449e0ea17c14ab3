package worker

// Failed jobs are parked on a redis list (dlq:{queue}) for manual replay.
// An undelivered order notice must never retry in the consume loop — the
// order it announces is already committed, so the job is parked and the
// clerk-facing flow stays unaffected.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DeadLetter is the parked form of a failed job, with enough context to
// replay it by hand (LPUSH the payload back onto source_queue).
type DeadLetter struct {
	SourceQueue string          `json:"source_queue"`
	JobType     string          `json:"job_type"`
	Payload     json.RawMessage `json:"payload"`
	Reason      string          `json:"reason"`
	FailedAt    string          `json:"failed_at"` // RFC 3339, UTC
	Attempts    int             `json:"attempts"`
}

// ParkFailedJob moves a failed job onto the queue's dead letter list.
// Best-effort: a park failure is logged, never propagated.
func ParkFailedJob(ctx context.Context, rdb *redis.Client, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	letter := DeadLetter{
		SourceQueue: queue,
		JobType:     jobType,
		Payload:     payload,
		Reason:      reason,
		FailedAt:    time.Now().UTC().Format(time.RFC3339),
		Attempts:    attempts,
	}

	data, err := json.Marshal(letter)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal dead letter")
		return
	}

	key := DLQPrefix + queue
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: failed to park job")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job parked")
}

// DLQLength reports the parked-job backlog for a queue; surfaced by the
// health endpoint so a stuck mailer is visible without redis access.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
