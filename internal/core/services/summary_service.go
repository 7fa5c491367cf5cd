package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/opinionpoll/internal/core/ports"
)

type summaryService struct {
	pollRepo  ports.PollRepository
	tallyRepo ports.TallyRepository
	logger    *zap.Logger
}

func NewSummaryService(pollRepo ports.PollRepository, tallyRepo ports.TallyRepository, logger *zap.Logger) ports.SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &summaryService{
		pollRepo:  pollRepo,
		tallyRepo: tallyRepo,
		logger:    logger,
	}
}

// ReconcileAllVoteCounts recomputes every poll's total_votes from the vote
// ledger and returns how many counters were corrected.
func (s *summaryService) ReconcileAllVoteCounts(ctx context.Context) (int, error) {
	pollIDs, err := s.pollRepo.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch all polls: %w", err)
	}

	var (
		wg      sync.WaitGroup
		drifted atomic.Int64
	)
	errChan := make(chan error, len(pollIDs))

	for _, id := range pollIDs {
		wg.Add(1)
		go func(pollID int64) {
			defer wg.Done()
			changed, err := s.tallyRepo.ReconcileTotalVotes(ctx, pollID)
			if err != nil {
				errChan <- fmt.Errorf("failed to reconcile poll %d: %w", pollID, err)
				return
			}
			if changed {
				drifted.Add(1)
				s.logger.Warn("vote counter drift corrected", zap.Int64("poll_id", pollID))
			}
		}(id)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return int(drifted.Load()), err
		}
	}

	return int(drifted.Load()), nil
}
