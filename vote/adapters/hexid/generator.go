package hexid

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"voteboard/vote/ports"
)

// Generator mints voter ids as 64 random bits rendered lowercase hex. At that
// width collisions are negligible for the volumes a single poll sees; the ids
// are identifiers, not secrets.
type Generator struct{}

func (Generator) NewVoterID(context.Context) (string, error) {
	var raw [8]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("read random voter id bytes: %w", err)
	}
	return hex.EncodeToString(raw[:]), nil
}

var _ ports.VoterIDGenerator = Generator{}
