package workers

import (
	"context"
	"errors"
	"log/slog"

	application "voteboard/vote/application"
	"voteboard/vote/domain/entities"
	domainerrors "voteboard/vote/domain/errors"
	"voteboard/vote/ports"
)

// QueueDrainer moves queued vote records into a tally-capable store. Queue
// delivery is at-least-once, so a duplicate-voter conflict on insert means the
// record was already drained and the message is simply consumed.
type QueueDrainer struct {
	Source ports.QueueSource
	Store  ports.VoteStore
	Logger *slog.Logger
}

// Run consumes records until ctx is canceled or the source/store fails in a
// way that must not lose the in-flight record. Store unavailability stops the
// loop: the record was not written and has to be redelivered.
func (d QueueDrainer) Run(ctx context.Context) error {
	logger := application.ResolveLogger(d.Logger)
	logger.Info("queue drainer started",
		"event", "vote_drainer_started",
		"module", "vote",
		"layer", "worker",
	)

	for {
		record, ack, err := d.Source.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				logger.Info("queue drainer stopping",
					"event", "vote_drainer_stopped",
					"module", "vote",
					"layer", "worker",
				)
				return nil
			}
			logger.Error("queue read failed",
				"event", "vote_drainer_read_failed",
				"module", "vote",
				"layer", "worker",
				"error", err.Error(),
			)
			return err
		}

		if err := d.Store.Write(ctx, record); err != nil {
			if errors.Is(err, domainerrors.ErrDuplicateVoter) {
				logger.Warn("skipping redelivered vote",
					"event", "vote_drainer_duplicate_skipped",
					"module", "vote",
					"layer", "worker",
					"voter_id", record.VoterID,
				)
				d.ack(logger, ack, record)
				continue
			}
			logger.Error("vote drain write failed",
				"event", "vote_drainer_write_failed",
				"module", "vote",
				"layer", "worker",
				"voter_id", record.VoterID,
				"error", err.Error(),
			)
			// Not acknowledged: the broker redelivers the record.
			return err
		}

		d.ack(logger, ack, record)
		logger.Info("vote drained",
			"event", "vote_drained",
			"module", "vote",
			"layer", "worker",
			"voter_id", record.VoterID,
			"choice", record.Choice,
		)
	}
}

// ack confirms a handled delivery. A failed confirmation only risks one
// redelivery, which the duplicate-voter skip absorbs, so it is logged and
// the loop keeps going.
func (d QueueDrainer) ack(logger *slog.Logger, ack ports.AckFunc, record entities.VoteRecord) {
	if ack == nil {
		return
	}
	if err := ack(); err != nil {
		logger.Warn("vote delivery ack failed",
			"event", "vote_drainer_ack_failed",
			"module", "vote",
			"layer", "worker",
			"voter_id", record.VoterID,
			"error", err.Error(),
		)
	}
}
