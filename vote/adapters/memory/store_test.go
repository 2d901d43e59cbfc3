package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"voteboard/vote/domain/entities"
	domainerrors "voteboard/vote/domain/errors"
)

func TestStoreWriteAndTally(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 4; i++ {
		record := entities.VoteRecord{
			VoterID:   fmt.Sprintf("voter-%d", i),
			Choice:    "Cats",
			CreatedAt: now,
		}
		if i%2 == 1 {
			record.Choice = "Dogs"
		}
		if err := store.Write(ctx, record); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	rows, err := store.Tally(ctx)
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", rows)
	}
	if rows[0].Choice != "Cats" || rows[0].Count != 2 {
		t.Fatalf("expected Cats=2 first, got %+v", rows[0])
	}
	if rows[1].Choice != "Dogs" || rows[1].Count != 2 {
		t.Fatalf("expected Dogs=2 second, got %+v", rows[1])
	}
}

func TestStoreRejectsDuplicateVoter(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	record := entities.VoteRecord{VoterID: "a1a1a1a1a1a1a1a1", Choice: "Cats"}
	if err := store.Write(ctx, record); err != nil {
		t.Fatalf("first write: %v", err)
	}

	record.Choice = "Dogs"
	if err := store.Write(ctx, record); !errors.Is(err, domainerrors.ErrDuplicateVoter) {
		t.Fatalf("expected ErrDuplicateVoter, got %v", err)
	}

	// The original record is untouched.
	records := store.Records()
	if len(records) != 1 || records[0].Choice != "Cats" {
		t.Fatalf("expected single Cats record preserved, got %+v", records)
	}
}

func TestStoreConcurrentWrites(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			record := entities.VoteRecord{
				VoterID: fmt.Sprintf("voter-%d", i),
				Choice:  "Cats",
			}
			if err := store.Write(ctx, record); err != nil {
				t.Errorf("write %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	rows, err := store.Tally(ctx)
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	if len(rows) != 1 || rows[0].Count != 32 {
		t.Fatalf("expected 32 Cats votes, got %+v", rows)
	}
}

func TestQueueRoundTrip(t *testing.T) {
	queue := NewQueue(4)
	ctx := context.Background()

	want := entities.VoteRecord{VoterID: "b2b2b2b2b2b2b2b2", Choice: "Dogs"}
	if err := queue.Write(ctx, want); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	got, ack, err := queue.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if err := ack(); err != nil {
		t.Fatalf("ack: %v", err)
	}
}

func TestQueueTallyIsUnsupported(t *testing.T) {
	queue := NewQueue(1)
	if _, err := queue.Tally(context.Background()); !errors.Is(err, domainerrors.ErrTallyUnsupported) {
		t.Fatalf("expected ErrTallyUnsupported, got %v", err)
	}
}

func TestQueueNextHonorsContext(t *testing.T) {
	queue := NewQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := queue.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
