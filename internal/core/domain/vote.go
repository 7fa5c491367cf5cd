package domain

import (
	"strings"
	"time"
)

// MaxVoterIDLength bounds the client-supplied voter identity.
const MaxVoterIDLength = 255

type Vote struct {
	ID           int64     `json:"id"`
	PollID       int64     `json:"poll_id"`
	CompetitorID int64     `json:"competitor_id"`
	VoterID      string    `json:"voter_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// NormalizeVoterID trims surrounding whitespace and rejects empty or oversized
// identities. Two ids that differ only in surrounding whitespace are the same voter.
func NormalizeVoterID(voterID string) (string, error) {
	voterID = strings.TrimSpace(voterID)
	if voterID == "" {
		return "", ErrMissingVoter
	}
	if len(voterID) > MaxVoterIDLength {
		return "", ErrVoterIDTooLong
	}
	return voterID, nil
}
