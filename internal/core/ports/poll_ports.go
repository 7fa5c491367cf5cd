package ports

import (
	"context"
	"time"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
)

type PollRepository interface {
	Create(ctx context.Context, poll *domain.Poll) error
	Update(ctx context.Context, poll *domain.Poll) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Poll, error)
	List(ctx context.Context, category string) ([]domain.PollSummary, error)
	ListIDs(ctx context.Context) ([]int64, error)
	FindIDByRegion(ctx context.Context, region string) (int64, error)
}

type CompetitorInput struct {
	ID    int64
	Name  string
	Party string
}

type PollInput struct {
	Title           string
	Category        string
	Presidential    string
	Region          string
	County          string
	Constituency    string
	Ward            string
	VotingExpiresAt *time.Time
	Published       bool
	Competitors     []CompetitorInput
}

type PollService interface {
	Create(ctx context.Context, input PollInput) (*domain.Poll, error)
	Update(ctx context.Context, id int64, input PollInput) (*domain.Poll, error)
	Delete(ctx context.Context, id int64) error
	ListPolls(ctx context.Context, category string) ([]domain.PollSummary, error)
	FindByCounty(ctx context.Context, county string) (int64, error)
}
