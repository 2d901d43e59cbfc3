package application

import (
	"context"
	"log/slog"
	"time"

	"voteboard/vote/domain/entities"
	domainerrors "voteboard/vote/domain/errors"
	"voteboard/vote/ports"
)

// SubmitVoteCommand is the write-model input for a vote submission. FieldSet
// distinguishes a missing form field from a present-but-empty value: an empty
// Choice with FieldSet true is a legal vote for the empty string.
type SubmitVoteCommand struct {
	Choice   string
	FieldSet bool
}

// SubmitVoteResult returns the accepted record the transport layer echoes back.
type SubmitVoteResult struct {
	Record entities.VoteRecord
}

// VoteService orchestrates vote submissions: validate the payload, mint a
// fresh voter id, stamp the submission time, and delegate persistence to the
// configured store. Store errors propagate unmasked; the observer hook is the
// only side channel.
type VoteService struct {
	Store    ports.VoteStore
	IDGen    ports.VoterIDGenerator
	Clock    ports.Clock
	Observer ports.OutcomeObserver
	Logger   *slog.Logger
}

// SubmitVote accepts any choice value verbatim; there is no allow-list. Every
// call appends an independent record, so repeat submissions from the same
// caller count separately.
func (s VoteService) SubmitVote(ctx context.Context, cmd SubmitVoteCommand) (SubmitVoteResult, error) {
	logger := ResolveLogger(s.Logger)
	if !cmd.FieldSet {
		logger.Warn("vote submission missing vote field",
			"event", "vote_submit_validation_failed",
			"module", "vote",
			"layer", "application",
		)
		s.observeRejected("missing_vote_field")
		return SubmitVoteResult{}, domainerrors.ErrMissingVote
	}

	voterID, err := s.IDGen.NewVoterID(ctx)
	if err != nil {
		logger.Error("voter id generation failed",
			"event", "vote_submit_id_generation_failed",
			"module", "vote",
			"layer", "application",
			"error", err.Error(),
		)
		return SubmitVoteResult{}, err
	}

	record := entities.VoteRecord{
		VoterID:   voterID,
		Choice:    cmd.Choice,
		CreatedAt: s.now(),
	}
	if err := s.Store.Write(ctx, record); err != nil {
		logger.Error("vote write failed",
			"event", "vote_submit_write_failed",
			"module", "vote",
			"layer", "application",
			"voter_id", voterID,
			"error", err.Error(),
		)
		s.observeStorageFailed(err)
		return SubmitVoteResult{}, err
	}

	logger.Info("vote accepted",
		"event", "vote_submit_accepted",
		"module", "vote",
		"layer", "application",
		"voter_id", voterID,
		"choice", cmd.Choice,
	)
	s.observeAccepted(record)
	return SubmitVoteResult{Record: record}, nil
}

// Tally returns the current per-choice counts from the configured store.
func (s VoteService) Tally(ctx context.Context) ([]entities.TallyRow, error) {
	logger := ResolveLogger(s.Logger)
	rows, err := s.Store.Tally(ctx)
	if err != nil {
		logger.Error("tally read failed",
			"event", "vote_tally_failed",
			"module", "vote",
			"layer", "application",
			"error", err.Error(),
		)
		return nil, err
	}
	return rows, nil
}

func (s VoteService) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (s VoteService) observeAccepted(record entities.VoteRecord) {
	if s.Observer != nil {
		s.Observer.VoteAccepted(record)
	}
}

func (s VoteService) observeRejected(reason string) {
	if s.Observer != nil {
		s.Observer.VoteRejected(reason)
	}
}

func (s VoteService) observeStorageFailed(err error) {
	if s.Observer != nil {
		s.Observer.StorageFailed(err)
	}
}
