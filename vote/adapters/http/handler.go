package httpadapter

import (
	"context"
	"log/slog"

	"voteboard/vote/application"
	"voteboard/vote/domain/entities"
	httptransport "voteboard/vote/transport/http"
)

type Handler struct {
	Votes  application.VoteService
	Logger *slog.Logger
}

// SubmitVoteHandler maps a parsed form submission onto the service command.
// fieldSet carries whether the vote field was present at all; a present empty
// value is a valid choice.
func (h Handler) SubmitVoteHandler(
	ctx context.Context,
	choice string,
	fieldSet bool,
) (httptransport.SubmitVoteResponse, error) {
	result, err := h.Votes.SubmitVote(ctx, application.SubmitVoteCommand{
		Choice:   choice,
		FieldSet: fieldSet,
	})
	if err != nil {
		return httptransport.SubmitVoteResponse{}, err
	}
	return httptransport.SubmitVoteResponse{
		VoterID: result.Record.VoterID,
		Choice:  result.Record.Choice,
	}, nil
}

func (h Handler) TallyHandler(ctx context.Context) ([]entities.TallyRow, error) {
	return h.Votes.Tally(ctx)
}
