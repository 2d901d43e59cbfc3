package queue

import (
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const amqpDialAttempts = 5

// ConnectAMQP dials the broker, retrying a few times because the broker often
// comes up after the service in compose-style deployments.
func ConnectAMQP(url string, logger *slog.Logger) (*amqp.Connection, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var connection *amqp.Connection
	var err error
	for attempt := 1; attempt <= amqpDialAttempts; attempt++ {
		connection, err = amqp.Dial(url)
		if err == nil {
			return connection, nil
		}
		logger.Warn("amqp dial failed, retrying",
			"event", "amqp_dial_retry",
			"module", "internal/platform/queue",
			"layer", "platform",
			"attempt", attempt,
			"error", err.Error(),
		)
		time.Sleep(5 * time.Second)
	}
	return nil, fmt.Errorf("dial amqp after %d attempts: %w", amqpDialAttempts, err)
}
