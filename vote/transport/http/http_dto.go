package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SubmitVoteResponse echoes the accepted submission as one well-formed JSON
// object. Field names match the stored record: voter_id and vote.
type SubmitVoteResponse struct {
	VoterID string `json:"voter_id"`
	Choice  string `json:"vote"`
}
