package redisqueue

import (
	"context"
	"encoding/json"
	"log/slog"

	"voteboard/vote/domain/entities"
	domainerrors "voteboard/vote/domain/errors"
	"voteboard/vote/ports"

	"github.com/redis/go-redis/v9"
)

// Queue is the list-backed VoteStore: Write appends the JSON-serialized record
// to the tail of a named list. It has no read path; aggregation is the
// drainer's job, so Tally reports ErrTallyUnsupported.
type Queue struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

func NewQueue(client *redis.Client, key string, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	if key == "" {
		key = "votes"
	}
	return &Queue{
		client: client,
		key:    key,
		logger: logger,
	}
}

func (q *Queue) Write(ctx context.Context, record entities.VoteRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := q.client.RPush(ctx, q.key, payload).Err(); err != nil {
		q.logger.Error("vote enqueue failed",
			"event", "vote_queue_push_failed",
			"module", "vote",
			"layer", "adapter",
			"queue", q.key,
			"error", err.Error(),
		)
		return domainerrors.ErrStorageUnavailable
	}
	return nil
}

func (q *Queue) Tally(context.Context) ([]entities.TallyRow, error) {
	return nil, domainerrors.ErrTallyUnsupported
}

// Next pops the head of the list, blocking until a record arrives or ctx is
// canceled. BLPOP is destructive, so there is no broker-side redelivery and
// the returned ack is a no-op. A record that fails to decode is already
// consumed; it is logged and skipped rather than wedging the queue head.
func (q *Queue) Next(ctx context.Context) (entities.VoteRecord, ports.AckFunc, error) {
	for {
		values, err := q.client.BLPop(ctx, 0, q.key).Result()
		if err != nil {
			if ctx.Err() != nil {
				return entities.VoteRecord{}, nil, ctx.Err()
			}
			return entities.VoteRecord{}, nil, err
		}
		// BLPop returns [key, value].
		if len(values) != 2 {
			continue
		}
		var record entities.VoteRecord
		if err := json.Unmarshal([]byte(values[1]), &record); err != nil {
			q.logger.Error("queued vote decode failed",
				"event", "vote_queue_decode_failed",
				"module", "vote",
				"layer", "adapter",
				"queue", q.key,
				"error", err.Error(),
			)
			continue
		}
		return record, func() error { return nil }, nil
	}
}

var _ ports.VoteStore = (*Queue)(nil)
var _ ports.QueueSource = (*Queue)(nil)
