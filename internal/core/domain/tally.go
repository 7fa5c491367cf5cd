package domain

import (
	"math"
	"sort"
	"strconv"
	"time"
)

// LeaderboardSize is how many competitors each live poll reports.
const LeaderboardSize = 2

const zeroPercentage = "0.00"

// CompetitorCount is the raw vote count for one competitor.
type CompetitorCount struct {
	ID        int64
	Name      string
	Party     string
	VoteCount int64
}

type CompetitorResult struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Party      string `json:"party"`
	VoteCount  int64  `json:"voteCount"`
	Percentage string `json:"percentage"`
}

// Tally is the per-competitor breakdown of a poll. ValidVotes is the sum of
// competitor counts and never includes spoiled votes.
type Tally struct {
	PollID     int64
	ValidVotes int64
	Results    []CompetitorResult
}

// NewTally orders counts by descending votes, ties by competitor id, and
// derives each competitor's share of the valid votes.
func NewTally(pollID int64, counts []CompetitorCount) Tally {
	sorted := make([]CompetitorCount, len(counts))
	copy(sorted, counts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].VoteCount != sorted[j].VoteCount {
			return sorted[i].VoteCount > sorted[j].VoteCount
		}
		return sorted[i].ID < sorted[j].ID
	})

	var total int64
	for _, c := range sorted {
		total += c.VoteCount
	}

	results := make([]CompetitorResult, 0, len(sorted))
	for _, c := range sorted {
		results = append(results, CompetitorResult{
			ID:         c.ID,
			Name:       c.Name,
			Party:      partyLabel(c.Party),
			VoteCount:  c.VoteCount,
			Percentage: FormatPercentage(c.VoteCount, total),
		})
	}

	return Tally{PollID: pollID, ValidVotes: total, Results: results}
}

// FormatPercentage renders count/total*100 rounded to two decimals.
func FormatPercentage(count, total int64) string {
	if total <= 0 {
		return zeroPercentage
	}
	pct := float64(count) / float64(total) * 100
	return strconv.FormatFloat(math.Round(pct*100)/100, 'f', 2, 64)
}

// PollTally is the poll detail view: metadata plus current results.
type PollTally struct {
	Poll  *Poll
	Tally Tally
}

type Candidate struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	VoteCount int64  `json:"voteCount"`
}

type LeaderboardEntry struct {
	ID              int64       `json:"id"`
	Title           string      `json:"title"`
	Category        string      `json:"category"`
	County          string      `json:"county"`
	VotingExpiresAt time.Time   `json:"voting_expires_at"`
	TotalVotes      int64       `json:"total_votes"`
	TopCandidates   []Candidate `json:"top_candidates"`
}
