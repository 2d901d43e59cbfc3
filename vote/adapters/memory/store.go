package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"voteboard/vote/domain/entities"
	domainerrors "voteboard/vote/domain/errors"
	"voteboard/vote/ports"
)

// Store is the in-memory VoteStore used by tests and local wiring. It keeps
// the same append-only discipline as the relational adapter: a repeated voter
// id is a conflict, never an update.
type Store struct {
	mu      sync.RWMutex
	records []entities.VoteRecord
	byVoter map[string]struct{}
}

func NewStore(seed []entities.VoteRecord) *Store {
	store := &Store{
		byVoter: make(map[string]struct{}, len(seed)),
	}
	for _, record := range seed {
		store.records = append(store.records, record)
		store.byVoter[record.VoterID] = struct{}{}
	}
	return store
}

func (s *Store) Write(_ context.Context, record entities.VoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byVoter[record.VoterID]; exists {
		return domainerrors.ErrDuplicateVoter
	}
	s.records = append(s.records, record)
	s.byVoter[record.VoterID] = struct{}{}
	return nil
}

func (s *Store) Tally(_ context.Context) ([]entities.TallyRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int64)
	for _, record := range s.records {
		counts[record.Choice]++
	}
	items := make([]entities.TallyRow, 0, len(counts))
	for choice, count := range counts {
		items = append(items, entities.TallyRow{Choice: choice, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Choice < items[j].Choice
	})
	return items, nil
}

// Records returns a copy of everything written, in write order.
func (s *Store) Records() []entities.VoteRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.VoteRecord(nil), s.records...)
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

var _ ports.VoteStore = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)

// Queue is an in-memory QueueSource plus submission-only VoteStore, mirroring
// the broker adapters for worker tests.
type Queue struct {
	records chan entities.VoteRecord
}

func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 128
	}
	return &Queue{
		records: make(chan entities.VoteRecord, capacity),
	}
}

func (q *Queue) Write(ctx context.Context, record entities.VoteRecord) error {
	select {
	case q.records <- record:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) Tally(context.Context) ([]entities.TallyRow, error) {
	return nil, domainerrors.ErrTallyUnsupported
}

func (q *Queue) Next(ctx context.Context) (entities.VoteRecord, ports.AckFunc, error) {
	select {
	case record := <-q.records:
		return record, func() error { return nil }, nil
	case <-ctx.Done():
		return entities.VoteRecord{}, nil, ctx.Err()
	}
}

var _ ports.VoteStore = (*Queue)(nil)
var _ ports.QueueSource = (*Queue)(nil)
