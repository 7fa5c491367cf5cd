package http

import (
	"context"
	"errors"

	"github.com/stretchr/testify/mock"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
	"github.com/vncsmyrnk/opinionpoll/internal/core/ports"
)

type mockVoteService struct {
	mock.Mock
}

func (m *mockVoteService) CastVote(ctx context.Context, input ports.VoteInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *mockVoteService) HasVoted(ctx context.Context, pollID int64, voterID string) (bool, error) {
	args := m.Called(ctx, pollID, voterID)
	return args.Bool(0), args.Error(1)
}

type mockPollService struct {
	mock.Mock
}

func (m *mockPollService) Create(ctx context.Context, input ports.PollInput) (*domain.Poll, error) {
	args := m.Called(ctx, input)
	if p := args.Get(0); p != nil {
		return p.(*domain.Poll), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPollService) Update(ctx context.Context, id int64, input ports.PollInput) (*domain.Poll, error) {
	args := m.Called(ctx, id, input)
	if p := args.Get(0); p != nil {
		return p.(*domain.Poll), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPollService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockPollService) ListPolls(ctx context.Context, category string) ([]domain.PollSummary, error) {
	args := m.Called(ctx, category)
	if p := args.Get(0); p != nil {
		return p.([]domain.PollSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPollService) FindByCounty(ctx context.Context, county string) (int64, error) {
	args := m.Called(ctx, county)
	return args.Get(0).(int64), args.Error(1)
}

type mockTallyService struct {
	mock.Mock
}

func (m *mockTallyService) Tally(ctx context.Context, pollID int64) (*domain.PollTally, error) {
	args := m.Called(ctx, pollID)
	if p := args.Get(0); p != nil {
		return p.(*domain.PollTally), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockTallyService) LiveLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	args := m.Called(ctx)
	if p := args.Get(0); p != nil {
		return p.([]domain.LeaderboardEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPostService struct {
	mock.Mock
}

func (m *mockPostService) Create(ctx context.Context, input ports.CreatePostInput) (*domain.Post, error) {
	args := m.Called(ctx, input)
	if p := args.Get(0); p != nil {
		return p.(*domain.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPostService) List(ctx context.Context) ([]*domain.Post, error) {
	args := m.Called(ctx)
	if p := args.Get(0); p != nil {
		return p.([]*domain.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPostService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*domain.Post), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPostService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// stubAuthService accepts exactly one token and maps it to admin 1.
type stubAuthService struct {
	token string
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*domain.AccessToken, error) {
	if username == "admin" && password == "password1" {
		return &domain.AccessToken{Token: s.token}, nil
	}
	return nil, domain.ErrInvalidCredentials
}

func (s *stubAuthService) Authenticate(token string) (int64, error) {
	if token == s.token {
		return 1, nil
	}
	return 0, domain.ErrInvalidToken
}

func (s *stubAuthService) ChangePassword(ctx context.Context, adminID int64, currentPassword, newPassword string) error {
	if err := domain.CheckPassword(newPassword); err != nil {
		return err
	}
	if currentPassword != "password1" {
		return domain.ErrInvalidCredentials
	}
	return nil
}

func (s *stubAuthService) GetAdmin(ctx context.Context, id int64) (*domain.Admin, error) {
	if id != 1 {
		return nil, domain.ErrAdminNotFound
	}
	return &domain.Admin{ID: 1, Username: "admin", PasswordHash: "secret-hash"}, nil
}

func (s *stubAuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	return nil
}

type stubPinger struct {
	err error
}

func (p stubPinger) PingContext(ctx context.Context) error {
	return p.err
}

var errDatabase = errors.New("pq: connection refused")
