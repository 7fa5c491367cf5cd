package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
	"github.com/vncsmyrnk/opinionpoll/internal/core/ports"
)

type voteService struct {
	voteRepo ports.VoteRepository
	now      func() time.Time
}

func NewVoteService(voteRepo ports.VoteRepository) ports.VoteService {
	return &voteService{
		voteRepo: voteRepo,
		now:      time.Now,
	}
}

// CastVote records one vote and bumps the poll counter atomically. The
// existence check is a fast path only; the ledger's (poll, voter) uniqueness
// decides races between concurrent calls.
func (s *voteService) CastVote(ctx context.Context, input ports.VoteInput) error {
	if input.PollID <= 0 || input.CompetitorID <= 0 {
		return domain.ErrMissingVoteFields
	}
	voterID, err := domain.NormalizeVoterID(input.VoterID)
	if err != nil {
		return err
	}

	return s.voteRepo.WithinTx(ctx, func(tx ports.VoteTx) error {
		voted, err := tx.HasVoted(ctx, input.PollID, voterID)
		if err != nil {
			return err
		}
		if voted {
			return domain.ErrAlreadyVoted
		}

		ok, err := tx.CompetitorInPoll(ctx, input.CompetitorID, input.PollID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidCompetitor
		}

		expiresAt, err := tx.PollExpiry(ctx, input.PollID)
		if err != nil {
			return err
		}
		poll := domain.Poll{VotingExpiresAt: expiresAt}
		if !poll.AcceptsVotes(s.now()) {
			return domain.ErrVotingClosed
		}

		vote := &domain.Vote{
			PollID:       input.PollID,
			CompetitorID: input.CompetitorID,
			VoterID:      voterID,
		}
		if err := tx.InsertVote(ctx, vote); err != nil {
			return err
		}

		if err := tx.IncrementTotalVotes(ctx, input.PollID); err != nil {
			return fmt.Errorf("failed to increment vote counter: %w", err)
		}
		return nil
	})
}

func (s *voteService) HasVoted(ctx context.Context, pollID int64, voterID string) (bool, error) {
	if pollID <= 0 {
		return false, domain.ErrInvalidPollID
	}
	voterID, err := domain.NormalizeVoterID(voterID)
	if err != nil {
		return false, err
	}
	return s.voteRepo.HasVoted(ctx, pollID, voterID)
}
