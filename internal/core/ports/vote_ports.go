package ports

import (
	"context"
	"time"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
)

// VoteTx is the store as seen from inside a single vote transaction.
// Nothing written through it is visible to other callers until the
// enclosing WithinTx returns nil.
type VoteTx interface {
	HasVoted(ctx context.Context, pollID int64, voterID string) (bool, error)
	CompetitorInPoll(ctx context.Context, competitorID, pollID int64) (bool, error)
	PollExpiry(ctx context.Context, pollID int64) (*time.Time, error)
	// InsertVote returns domain.ErrAlreadyVoted when the (poll, voter) pair
	// already has a vote, including one committed concurrently.
	InsertVote(ctx context.Context, vote *domain.Vote) error
	IncrementTotalVotes(ctx context.Context, pollID int64) error
}

type VoteRepository interface {
	HasVoted(ctx context.Context, pollID int64, voterID string) (bool, error)
	// WithinTx runs fn in a transaction, committing only when fn returns nil.
	WithinTx(ctx context.Context, fn func(tx VoteTx) error) error
}

type VoteInput struct {
	PollID       int64
	CompetitorID int64
	VoterID      string
}

type VoteService interface {
	CastVote(ctx context.Context, input VoteInput) error
	HasVoted(ctx context.Context, pollID int64, voterID string) (bool, error)
}
