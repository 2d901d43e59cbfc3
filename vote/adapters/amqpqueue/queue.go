package amqpqueue

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"voteboard/vote/domain/entities"
	domainerrors "voteboard/vote/domain/errors"
	"voteboard/vote/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Queue is the broker-backed VoteStore: Write publishes the JSON-serialized
// record as a persistent message on a durable queue. Like the list-backed
// variant it is submission-only; Tally reports ErrTallyUnsupported.
//
// amqp channels are not safe for concurrent publish, so the channel is
// mutex-guarded.
type Queue struct {
	channel *amqp.Channel
	queue   string
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewQueue declares the durable queue so publishes never race its creation.
func NewQueue(channel *amqp.Channel, queue string, logger *slog.Logger) (*Queue, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if queue == "" {
		queue = "votes"
	}
	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, err
	}
	return &Queue{
		channel: channel,
		queue:   queue,
		logger:  logger,
	}, nil
}

func (q *Queue) Write(ctx context.Context, record entities.VoteRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	err = q.channel.PublishWithContext(ctx,
		"",
		q.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         payload,
		},
	)
	if err != nil {
		q.logger.Error("vote publish failed",
			"event", "vote_queue_publish_failed",
			"module", "vote",
			"layer", "adapter",
			"queue", q.queue,
			"error", err.Error(),
		)
		return domainerrors.ErrStorageUnavailable
	}
	return nil
}

func (q *Queue) Tally(context.Context) ([]entities.TallyRow, error) {
	return nil, domainerrors.ErrTallyUnsupported
}

var _ ports.VoteStore = (*Queue)(nil)

// Source consumes vote records from the queue for the drainer. A delivery is
// held unacknowledged until the caller confirms it through the returned
// AckFunc, so a record whose write fails is redelivered by the broker. Only
// payloads that fail to decode are acked immediately; redelivering a poisoned
// payload would loop forever.
type Source struct {
	deliveries <-chan amqp.Delivery
	logger     *slog.Logger
}

func NewSource(channel *amqp.Channel, queue string, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if queue == "" {
		queue = "votes"
	}
	if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, err
	}
	deliveries, err := channel.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, err
	}
	return &Source{
		deliveries: deliveries,
		logger:     logger,
	}, nil
}

func (s *Source) Next(ctx context.Context) (entities.VoteRecord, ports.AckFunc, error) {
	for {
		select {
		case <-ctx.Done():
			return entities.VoteRecord{}, nil, ctx.Err()
		case delivery, ok := <-s.deliveries:
			if !ok {
				return entities.VoteRecord{}, nil, amqp.ErrClosed
			}
			var record entities.VoteRecord
			if err := json.Unmarshal(delivery.Body, &record); err != nil {
				s.logger.Error("queued vote decode failed",
					"event", "vote_queue_decode_failed",
					"module", "vote",
					"layer", "adapter",
					"error", err.Error(),
				)
				_ = delivery.Ack(false)
				continue
			}
			return record, func() error { return delivery.Ack(false) }, nil
		}
	}
}

var _ ports.QueueSource = (*Source)(nil)
