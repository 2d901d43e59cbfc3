package errors

import "errors"

var (
	ErrMissingVote        = errors.New("vote field is required")
	ErrStorageUnavailable = errors.New("vote store is unavailable")
	ErrDuplicateVoter     = errors.New("voter id already recorded")
	ErrTallyUnsupported   = errors.New("tally is not supported by this backend")
)
