package ports

import (
	"context"
	"time"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
)

type TallyRepository interface {
	CountByCompetitor(ctx context.Context, pollID int64) ([]domain.CompetitorCount, error)
	LiveLeaderboard(ctx context.Context, now time.Time, size int) ([]domain.LeaderboardEntry, error)
	// ReconcileTotalVotes rewrites the poll's counter from the ledger and
	// reports whether it had drifted.
	ReconcileTotalVotes(ctx context.Context, pollID int64) (bool, error)
}

type TallyService interface {
	Tally(ctx context.Context, pollID int64) (*domain.PollTally, error)
	LiveLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error)
}

type SummaryService interface {
	ReconcileAllVoteCounts(ctx context.Context) (int, error)
}
