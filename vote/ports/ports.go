package ports

import (
	"context"
	"time"

	"voteboard/vote/domain/entities"
)

// VoteStore is the persistence capability a deployment selects once at
// startup. Write appends exactly one record per call and must be safe for
// concurrent use; Tally reflects every write that completed before the call
// began. Queue-backed stores return domainerrors.ErrTallyUnsupported from
// Tally because aggregation happens in a separate drainer process.
type VoteStore interface {
	Write(ctx context.Context, record entities.VoteRecord) error
	Tally(ctx context.Context) ([]entities.TallyRow, error)
}

// AckFunc confirms a delivery once its record is durably handled. Sources
// whose pop is already destructive return a no-op.
type AckFunc func() error

// QueueSource yields queued records for the drainer. Next blocks until a
// record arrives, the source fails, or ctx is canceled. A delivery must not
// be confirmed to the broker until the caller invokes the returned AckFunc;
// an unconfirmed record is redelivered.
type QueueSource interface {
	Next(ctx context.Context) (entities.VoteRecord, AckFunc, error)
}

// VoterIDGenerator mints the per-submission voter identifier. Uniqueness, not
// secrecy, is the requirement.
type VoterIDGenerator interface {
	NewVoterID(ctx context.Context) (string, error)
}

type Clock interface {
	Now() time.Time
}

// OutcomeObserver receives one callback per submission outcome. The service
// never branches on observer behavior; implementations must not block.
type OutcomeObserver interface {
	VoteAccepted(record entities.VoteRecord)
	VoteRejected(reason string)
	StorageFailed(err error)
}
