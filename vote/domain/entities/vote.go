package entities

import (
	"encoding/json"
	"fmt"
	"time"
)

// VoteRecord is one accepted vote submission. Records are append-only: once a
// store acknowledges a write the record is never updated or deleted.
type VoteRecord struct {
	VoterID   string    `json:"voter_id"`
	Choice    string    `json:"vote"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// TallyRow is the aggregate count for one choice. On the wire it is a
// two-element array, `["Cats", 3]`, one row per distinct choice that has
// received at least one vote. Row order across choices is store-defined.
type TallyRow struct {
	Choice string
	Count  int64
}

func (r TallyRow) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.Choice, r.Count})
}

func (r *TallyRow) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("tally row: expected [choice, count], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &r.Choice); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &r.Count)
}
