package domain

import (
	"strings"
	"time"
)

const defaultParty = "Independent"

type Poll struct {
	ID              int64        `json:"id"`
	Title           string       `json:"title"`
	Category        string       `json:"category"`
	Presidential    string       `json:"presidential,omitempty"`
	Region          string       `json:"region"`
	County          string       `json:"county"`
	Constituency    string       `json:"constituency"`
	Ward            string       `json:"ward"`
	VotingExpiresAt *time.Time   `json:"voting_expires_at,omitempty"`
	TotalVotes      int64        `json:"total_votes"`
	SpoiledVotes    int64        `json:"spoiled_votes"`
	Published       bool         `json:"published"`
	CreatedAt       time.Time    `json:"created_at"`
	Competitors     []Competitor `json:"competitors"`
}

// AcceptsVotes reports whether the voting window is still open at now.
// A poll without an expiry never closes.
func (p *Poll) AcceptsVotes(now time.Time) bool {
	return p.VotingExpiresAt == nil || p.VotingExpiresAt.After(now)
}

type Competitor struct {
	ID        int64     `json:"id"`
	PollID    int64     `json:"poll_id"`
	Name      string    `json:"name"`
	Party     string    `json:"party,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PartyLabel returns the party, or "Independent" for competitors without one.
func (c Competitor) PartyLabel() string {
	return partyLabel(c.Party)
}

func partyLabel(party string) string {
	if strings.TrimSpace(party) == "" {
		return defaultParty
	}
	return party
}

// PollSummary is the list view of a poll.
type PollSummary struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	LastUpdated time.Time `json:"lastUpdated"`
}
