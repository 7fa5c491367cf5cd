package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
	"github.com/vncsmyrnk/opinionpoll/internal/core/ports"
)

type tallyService struct {
	pollRepo  ports.PollRepository
	tallyRepo ports.TallyRepository
	now       func() time.Time
}

func NewTallyService(pollRepo ports.PollRepository, tallyRepo ports.TallyRepository) ports.TallyService {
	return &tallyService{
		pollRepo:  pollRepo,
		tallyRepo: tallyRepo,
		now:       time.Now,
	}
}

func (s *tallyService) Tally(ctx context.Context, pollID int64) (*domain.PollTally, error) {
	if pollID <= 0 {
		return nil, domain.ErrInvalidPollID
	}

	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}

	counts, err := s.tallyRepo.CountByCompetitor(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}

	return &domain.PollTally{
		Poll:  poll,
		Tally: domain.NewTally(pollID, counts),
	}, nil
}

func (s *tallyService) LiveLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	entries, err := s.tallyRepo.LiveLeaderboard(ctx, s.now(), domain.LeaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard: %w", err)
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	return entries, nil
}
