package services

import (
	"context"
	"strings"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
	"github.com/vncsmyrnk/opinionpoll/internal/core/ports"
)

type pollService struct {
	repo ports.PollRepository
}

func NewPollService(repo ports.PollRepository) ports.PollService {
	return &pollService{
		repo: repo,
	}
}

func (s *pollService) Create(ctx context.Context, input ports.PollInput) (*domain.Poll, error) {
	poll, err := buildPoll(input)
	if err != nil {
		return nil, err
	}

	for _, c := range poll.Competitors {
		if c.ID != 0 {
			return nil, domain.NewValidationError("competitors", "new polls cannot reference existing competitors")
		}
	}

	if err := s.repo.Create(ctx, poll); err != nil {
		return nil, err
	}
	return poll, nil
}

func (s *pollService) Update(ctx context.Context, id int64, input ports.PollInput) (*domain.Poll, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidPollID
	}

	poll, err := buildPoll(input)
	if err != nil {
		return nil, err
	}
	poll.ID = id

	if err := s.repo.Update(ctx, poll); err != nil {
		return nil, err
	}
	return poll, nil
}

func (s *pollService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidPollID
	}
	return s.repo.Delete(ctx, id)
}

func (s *pollService) ListPolls(ctx context.Context, category string) ([]domain.PollSummary, error) {
	polls, err := s.repo.List(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, err
	}
	if polls == nil {
		polls = []domain.PollSummary{}
	}
	return polls, nil
}

func (s *pollService) FindByCounty(ctx context.Context, county string) (int64, error) {
	county = strings.TrimSpace(county)
	if county == "" {
		return 0, domain.NewValidationError("county", "is required")
	}
	return s.repo.FindIDByRegion(ctx, county)
}

func buildPoll(input ports.PollInput) (*domain.Poll, error) {
	title := strings.TrimSpace(input.Title)
	category := strings.TrimSpace(input.Category)
	region := strings.TrimSpace(input.Region)
	if title == "" || category == "" || region == "" {
		return nil, domain.NewValidationError("", "title, category and region are required")
	}

	poll := &domain.Poll{
		Title:           title,
		Category:        category,
		Presidential:    strings.TrimSpace(input.Presidential),
		Region:          region,
		County:          strings.TrimSpace(input.County),
		Constituency:    strings.TrimSpace(input.Constituency),
		Ward:            strings.TrimSpace(input.Ward),
		VotingExpiresAt: input.VotingExpiresAt,
		Published:       input.Published,
	}

	seen := make(map[int64]bool)
	for _, c := range input.Competitors {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, domain.NewValidationError("competitors", "every competitor needs a name")
		}
		if c.ID != 0 {
			if seen[c.ID] {
				return nil, domain.NewValidationError("competitors", "competitor listed twice")
			}
			seen[c.ID] = true
		}
		poll.Competitors = append(poll.Competitors, domain.Competitor{
			ID:    c.ID,
			Name:  name,
			Party: strings.TrimSpace(c.Party),
		})
	}

	return poll, nil
}
