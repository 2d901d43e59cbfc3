package application

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"voteboard/vote/adapters/hexid"
	"voteboard/vote/adapters/memory"
	"voteboard/vote/domain/entities"
	domainerrors "voteboard/vote/domain/errors"
)

type failingStore struct{ err error }

func (f failingStore) Write(context.Context, entities.VoteRecord) error { return f.err }

func (f failingStore) Tally(context.Context) ([]entities.TallyRow, error) { return nil, f.err }

type recordingObserver struct {
	accepted int
	rejected []string
	failures []error
}

func (o *recordingObserver) VoteAccepted(_ entities.VoteRecord) { o.accepted++ }
func (o *recordingObserver) VoteRejected(reason string)         { o.rejected = append(o.rejected, reason) }
func (o *recordingObserver) StorageFailed(err error)            { o.failures = append(o.failures, err) }

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

func newTestService(store *memory.Store, observer *recordingObserver) VoteService {
	return VoteService{
		Store:    store,
		IDGen:    hexid.Generator{},
		Clock:    fixedClock{at: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)},
		Observer: observer,
	}
}

func TestSubmitVoteAcceptsAndEchoesChoice(t *testing.T) {
	store := memory.NewStore(nil)
	observer := &recordingObserver{}
	service := newTestService(store, observer)

	result, err := service.SubmitVote(context.Background(), SubmitVoteCommand{Choice: "OPTION_A", FieldSet: true})
	if err != nil {
		t.Fatalf("submit vote: %v", err)
	}
	if result.Record.Choice != "OPTION_A" {
		t.Fatalf("expected choice echoed, got %q", result.Record.Choice)
	}
	if !regexp.MustCompile(`^[0-9a-f]{16}$`).MatchString(result.Record.VoterID) {
		t.Fatalf("expected 16 lowercase hex chars, got %q", result.Record.VoterID)
	}
	if !result.Record.CreatedAt.Equal(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected clock-stamped time, got %v", result.Record.CreatedAt)
	}
	if got := store.Records(); len(got) != 1 {
		t.Fatalf("expected one stored record, got %d", len(got))
	}
	if observer.accepted != 1 {
		t.Fatalf("expected one accepted observation, got %d", observer.accepted)
	}
}

func TestSubmitVoteMissingFieldFailsWithoutWrite(t *testing.T) {
	store := memory.NewStore(nil)
	observer := &recordingObserver{}
	service := newTestService(store, observer)

	_, err := service.SubmitVote(context.Background(), SubmitVoteCommand{FieldSet: false})
	if !errors.Is(err, domainerrors.ErrMissingVote) {
		t.Fatalf("expected ErrMissingVote, got %v", err)
	}
	if got := store.Records(); len(got) != 0 {
		t.Fatalf("expected no stored records, got %d", len(got))
	}
	if len(observer.rejected) != 1 || observer.rejected[0] != "missing_vote_field" {
		t.Fatalf("expected one missing_vote_field rejection, got %+v", observer.rejected)
	}
}

func TestSubmitVoteEmptyChoiceIsValid(t *testing.T) {
	store := memory.NewStore(nil)
	service := newTestService(store, &recordingObserver{})

	result, err := service.SubmitVote(context.Background(), SubmitVoteCommand{Choice: "", FieldSet: true})
	if err != nil {
		t.Fatalf("submit empty choice: %v", err)
	}
	if result.Record.Choice != "" {
		t.Fatalf("expected empty choice stored verbatim, got %q", result.Record.Choice)
	}
}

func TestRepeatSubmissionsCountSeparately(t *testing.T) {
	store := memory.NewStore(nil)
	service := newTestService(store, &recordingObserver{})

	first, err := service.SubmitVote(context.Background(), SubmitVoteCommand{Choice: "Dogs", FieldSet: true})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second, err := service.SubmitVote(context.Background(), SubmitVoteCommand{Choice: "Dogs", FieldSet: true})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if first.Record.VoterID == second.Record.VoterID {
		t.Fatalf("expected fresh voter ids per submission, both %q", first.Record.VoterID)
	}

	rows, err := service.Tally(context.Background())
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	if len(rows) != 1 || rows[0].Choice != "Dogs" || rows[0].Count != 2 {
		t.Fatalf("expected Dogs counted twice, got %+v", rows)
	}
}

func TestSubmitVoteStoreFailureIsObserved(t *testing.T) {
	observer := &recordingObserver{}
	service := VoteService{
		Store:    failingStore{err: domainerrors.ErrStorageUnavailable},
		IDGen:    hexid.Generator{},
		Observer: observer,
	}

	_, err := service.SubmitVote(context.Background(), SubmitVoteCommand{Choice: "Cats", FieldSet: true})
	if !errors.Is(err, domainerrors.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if len(observer.failures) != 1 {
		t.Fatalf("expected one storage failure observation, got %d", len(observer.failures))
	}
}
