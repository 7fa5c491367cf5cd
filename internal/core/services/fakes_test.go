package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
	"github.com/vncsmyrnk/opinionpoll/internal/core/ports"
)

// fakeVoteStore serializes transactions and stages writes until commit, which
// is enough to observe atomicity and the uniqueness guard.
type fakeVoteStore struct {
	mu          sync.Mutex
	competitors map[int64]int64
	expiry      map[int64]*time.Time
	votes       []domain.Vote
	totals      map[int64]int64
	nextID      int64

	failIncrement error
	// concurrentInsert makes InsertVote behave as if another transaction
	// committed the same (poll, voter) pair after the fast-path check.
	concurrentInsert bool
}

func newFakeVoteStore() *fakeVoteStore {
	return &fakeVoteStore{
		competitors: make(map[int64]int64),
		expiry:      make(map[int64]*time.Time),
		totals:      make(map[int64]int64),
	}
}

func (f *fakeVoteStore) addPoll(pollID int64, expiresAt *time.Time, competitorIDs ...int64) {
	f.expiry[pollID] = expiresAt
	for _, id := range competitorIDs {
		f.competitors[id] = pollID
	}
}

func (f *fakeVoteStore) voteCount(pollID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.votes {
		if v.PollID == pollID {
			n++
		}
	}
	return n
}

func (f *fakeVoteStore) total(pollID int64) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totals[pollID]
}

func (f *fakeVoteStore) HasVoted(ctx context.Context, pollID int64, voterID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return hasVote(f.votes, pollID, voterID), nil
}

func (f *fakeVoteStore) WithinTx(ctx context.Context, fn func(tx ports.VoteTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tx := &fakeVoteTx{store: f, votes: append([]domain.Vote(nil), f.votes...), totals: make(map[int64]int64)}
	for k, v := range f.totals {
		tx.totals[k] = v
	}

	if err := fn(tx); err != nil {
		return err
	}

	f.votes = tx.votes
	f.totals = tx.totals
	return nil
}

type fakeVoteTx struct {
	store  *fakeVoteStore
	votes  []domain.Vote
	totals map[int64]int64
}

func (t *fakeVoteTx) HasVoted(ctx context.Context, pollID int64, voterID string) (bool, error) {
	return hasVote(t.votes, pollID, voterID), nil
}

func (t *fakeVoteTx) CompetitorInPoll(ctx context.Context, competitorID, pollID int64) (bool, error) {
	owner, ok := t.store.competitors[competitorID]
	return ok && owner == pollID, nil
}

func (t *fakeVoteTx) PollExpiry(ctx context.Context, pollID int64) (*time.Time, error) {
	expiresAt, ok := t.store.expiry[pollID]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	return expiresAt, nil
}

func (t *fakeVoteTx) InsertVote(ctx context.Context, vote *domain.Vote) error {
	if t.store.concurrentInsert || hasVote(t.votes, vote.PollID, vote.VoterID) {
		return domain.ErrAlreadyVoted
	}
	t.store.nextID++
	vote.ID = t.store.nextID
	vote.CreatedAt = time.Now()
	t.votes = append(t.votes, *vote)
	return nil
}

func (t *fakeVoteTx) IncrementTotalVotes(ctx context.Context, pollID int64) error {
	if t.store.failIncrement != nil {
		return t.store.failIncrement
	}
	t.totals[pollID]++
	return nil
}

func hasVote(votes []domain.Vote, pollID int64, voterID string) bool {
	for _, v := range votes {
		if v.PollID == pollID && v.VoterID == voterID {
			return true
		}
	}
	return false
}

type mockPollRepository struct {
	mock.Mock
}

func (m *mockPollRepository) Create(ctx context.Context, poll *domain.Poll) error {
	return m.Called(ctx, poll).Error(0)
}

func (m *mockPollRepository) Update(ctx context.Context, poll *domain.Poll) error {
	return m.Called(ctx, poll).Error(0)
}

func (m *mockPollRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPollRepository) GetByID(ctx context.Context, id int64) (*domain.Poll, error) {
	args := m.Called(ctx, id)
	poll, _ := args.Get(0).(*domain.Poll)
	return poll, args.Error(1)
}

func (m *mockPollRepository) List(ctx context.Context, category string) ([]domain.PollSummary, error) {
	args := m.Called(ctx, category)
	polls, _ := args.Get(0).([]domain.PollSummary)
	return polls, args.Error(1)
}

func (m *mockPollRepository) ListIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func (m *mockPollRepository) FindIDByRegion(ctx context.Context, region string) (int64, error) {
	args := m.Called(ctx, region)
	return args.Get(0).(int64), args.Error(1)
}

type mockTallyRepository struct {
	mock.Mock
}

func (m *mockTallyRepository) CountByCompetitor(ctx context.Context, pollID int64) ([]domain.CompetitorCount, error) {
	args := m.Called(ctx, pollID)
	counts, _ := args.Get(0).([]domain.CompetitorCount)
	return counts, args.Error(1)
}

func (m *mockTallyRepository) LiveLeaderboard(ctx context.Context, now time.Time, size int) ([]domain.LeaderboardEntry, error) {
	args := m.Called(ctx, now, size)
	entries, _ := args.Get(0).([]domain.LeaderboardEntry)
	return entries, args.Error(1)
}

func (m *mockTallyRepository) ReconcileTotalVotes(ctx context.Context, pollID int64) (bool, error) {
	args := m.Called(ctx, pollID)
	return args.Bool(0), args.Error(1)
}

type fakeAdminRepository struct {
	mu     sync.Mutex
	admins map[int64]*domain.Admin
	nextID int64
}

func newFakeAdminRepository() *fakeAdminRepository {
	return &fakeAdminRepository{admins: make(map[int64]*domain.Admin)}
}

func (f *fakeAdminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.Username == username {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeAdminRepository) GetByID(ctx context.Context, id int64) (*domain.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.admins[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.Username == admin.Username {
			return domain.ErrAdminExists
		}
	}
	f.nextID++
	admin.ID = f.nextID
	admin.CreatedAt = time.Now()
	copied := *admin
	f.admins[admin.ID] = &copied
	return nil
}

func (f *fakeAdminRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.admins[id]
	if !ok {
		return domain.ErrAdminNotFound
	}
	a.PasswordHash = hash
	return nil
}

var errStorage = errors.New("storage unavailable")
