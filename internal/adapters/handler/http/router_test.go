package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
	"github.com/vncsmyrnk/opinionpoll/internal/core/ports"
)

const adminToken = "valid-token"

type testApp struct {
	handler http.Handler
	votes   *mockVoteService
	polls   *mockPollService
	tallies *mockTallyService
	posts   *mockPostService
	metrics *Metrics
}

func newTestApp(t *testing.T, opts Options) *testApp {
	t.Helper()
	app := &testApp{
		votes:   &mockVoteService{},
		polls:   &mockPollService{},
		tallies: &mockTallyService{},
		posts:   &mockPostService{},
		metrics: NewMetrics(),
	}
	logger := zap.NewNop()
	opts.Metrics = app.metrics
	opts.Logger = logger
	if opts.AllowedOrigins == nil {
		opts.AllowedOrigins = []string{"*"}
	}

	app.handler = NewHandler(Handlers{
		Polls: NewPollHandler(app.polls, app.tallies, logger),
		Votes: NewVoteHandler(app.votes, app.metrics, logger),
		Posts: NewPostHandler(app.posts, logger),
		Auth:  NewAuthHandler(&stubAuthService{token: adminToken}, logger),
	}, opts)
	return app
}

func (a *testApp) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestCastVote(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		input      *ports.VoteInput
		serviceErr error
		wantStatus int
		wantMsg    string
		outcome    string
	}{
		{
			name:       "accepted",
			body:       `{"pollId": 3, "competitorId": 7, "voter_id": "device-1"}`,
			input:      &ports.VoteInput{PollID: 3, CompetitorID: 7, VoterID: "device-1"},
			wantStatus: http.StatusOK,
			wantMsg:    "Vote recorded successfully!",
			outcome:    voteAccepted,
		},
		{
			name:       "string ids and camel case voter",
			body:       `{"pollId": "3", "competitorId": "7", "voterId": "device-2"}`,
			input:      &ports.VoteInput{PollID: 3, CompetitorID: 7, VoterID: "device-2"},
			wantStatus: http.StatusOK,
			outcome:    voteAccepted,
		},
		{
			name:       "duplicate",
			body:       `{"pollId": 3, "competitorId": 7, "voter_id": "device-1"}`,
			input:      &ports.VoteInput{PollID: 3, CompetitorID: 7, VoterID: "device-1"},
			serviceErr: domain.ErrAlreadyVoted,
			wantStatus: http.StatusForbidden,
			wantMsg:    domain.ErrAlreadyVoted.Error(),
			outcome:    voteDuplicate,
		},
		{
			name:       "closed",
			body:       `{"pollId": 3, "competitorId": 7, "voter_id": "device-1"}`,
			input:      &ports.VoteInput{PollID: 3, CompetitorID: 7, VoterID: "device-1"},
			serviceErr: domain.ErrVotingClosed,
			wantStatus: http.StatusForbidden,
			outcome:    voteClosed,
		},
		{
			name:       "competitor of another poll",
			body:       `{"pollId": 3, "competitorId": 9, "voter_id": "device-1"}`,
			input:      &ports.VoteInput{PollID: 3, CompetitorID: 9, VoterID: "device-1"},
			serviceErr: domain.ErrInvalidCompetitor,
			wantStatus: http.StatusBadRequest,
			outcome:    voteInvalid,
		},
		{
			name:       "storage failure is not leaked",
			body:       `{"pollId": 3, "competitorId": 7, "voter_id": "device-1"}`,
			input:      &ports.VoteInput{PollID: 3, CompetitorID: 7, VoterID: "device-1"},
			serviceErr: errDatabase,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    domain.ErrInternal.Error(),
			outcome:    voteError,
		},
		{
			name:       "malformed body",
			body:       `{"pollId": "three"}`,
			wantStatus: http.StatusBadRequest,
			outcome:    voteInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, Options{})
			if tt.input != nil {
				app.votes.On("CastVote", mock.Anything, *tt.input).Return(tt.serviceErr).Once()
			}

			rec := app.do(http.MethodPost, "/api/votes", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, messageOf(t, rec))
			}
			assert.Equal(t, 1.0, testutil.ToFloat64(app.metrics.votes.WithLabelValues(tt.outcome)))
			app.votes.AssertExpectations(t)
		})
	}
}

func TestCastVote_RateLimited(t *testing.T) {
	app := newTestApp(t, Options{VoteLimiter: NewRateLimiter(1, 1)})
	app.votes.On("CastVote", mock.Anything, mock.Anything).Return(nil)

	body := `{"pollId": 1, "competitorId": 1, "voter_id": "v"}`
	assert.Equal(t, http.StatusOK, app.do(http.MethodPost, "/api/votes", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, app.do(http.MethodPost, "/api/votes", body).Code)
}

func TestCastVote_RateLimitIgnoresForwardedHeaders(t *testing.T) {
	body := `{"pollId": 1, "competitorId": 1, "voter_id": "v"}`

	app := newTestApp(t, Options{VoteLimiter: NewRateLimiter(1, 1)})
	app.votes.On("CastVote", mock.Anything, mock.Anything).Return(nil)
	assert.Equal(t, http.StatusOK, app.do(http.MethodPost, "/api/votes", body, "X-Forwarded-For", "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, app.do(http.MethodPost, "/api/votes", body, "X-Forwarded-For", "10.0.0.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, app.do(http.MethodPost, "/api/votes", body, "X-Real-IP", "10.0.0.3").Code)

	proxied := newTestApp(t, Options{VoteLimiter: NewRateLimiter(1, 1), TrustProxy: true})
	proxied.votes.On("CastVote", mock.Anything, mock.Anything).Return(nil)
	assert.Equal(t, http.StatusOK, proxied.do(http.MethodPost, "/api/votes", body, "X-Forwarded-For", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, proxied.do(http.MethodPost, "/api/votes", body, "X-Forwarded-For", "10.0.0.2").Code)
}

func TestRequestBodyLimit(t *testing.T) {
	app := newTestApp(t, Options{})
	huge := strings.Repeat("x", maxBodyBytes+1)

	rec := app.do(http.MethodPost, "/api/votes", `{"pollId": 1, "competitorId": 1, "voter_id": "`+huge+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "request body too large", messageOf(t, rec))

	rec = app.do(http.MethodPost, "/api/blogs", `{"title": "t", "content": "`+huge+`"}`, "Authorization", "Bearer "+adminToken)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	app.votes.AssertNotCalled(t, "CastVote", mock.Anything, mock.Anything)
	app.posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestVoteStatus(t *testing.T) {
	app := newTestApp(t, Options{})
	app.votes.On("HasVoted", mock.Anything, int64(4), "device-1").Return(true, nil)

	rec := app.do(http.MethodGet, "/api/votes/status?pollId=4&voter_id=device-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"alreadyVoted": true}`, rec.Body.String())

	rec = app.do(http.MethodGet, "/api/votes/status?pollId=4", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing pollId or voter_id", messageOf(t, rec))

	rec = app.do(http.MethodGet, "/api/votes/status?pollId=abc&voter_id=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPoll(t *testing.T) {
	app := newTestApp(t, Options{})
	poll := &domain.Poll{ID: 5, Title: "Governor", Category: "Governor", Region: "Nairobi", TotalVotes: 4, SpoiledVotes: 1}
	app.tallies.On("Tally", mock.Anything, int64(5)).Return(&domain.PollTally{
		Poll: poll,
		Tally: domain.NewTally(5, []domain.CompetitorCount{
			{ID: 1, Name: "Alice", VoteCount: 3},
			{ID: 2, Name: "Bob", Party: "Green", VoteCount: 1},
		}),
	}, nil)
	app.tallies.On("Tally", mock.Anything, int64(6)).Return(nil, domain.ErrPollNotFound)

	rec := app.do(http.MethodGet, "/api/polls/5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body pollDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(4), body.TotalVotes)
	assert.Equal(t, int64(4), body.ValidVotes)
	assert.Equal(t, int64(1), body.SpoiledVotes)
	require.Len(t, body.Results, 2)
	assert.Equal(t, "75.00", body.Results[0].Percentage)
	assert.Equal(t, "Independent", body.Results[0].Party)

	assert.Equal(t, http.StatusNotFound, app.do(http.MethodGet, "/api/polls/6", "").Code)
	assert.Equal(t, http.StatusBadRequest, app.do(http.MethodGet, "/api/polls/zero", "").Code)
}

func TestLivePolls(t *testing.T) {
	app := newTestApp(t, Options{})
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	app.tallies.On("LiveLeaderboard", mock.Anything).Return([]domain.LeaderboardEntry{{
		ID: 1, Title: "Senate", VotingExpiresAt: expires, TotalVotes: 9,
		TopCandidates: []domain.Candidate{{ID: 2, Name: "Alice", VoteCount: 6}},
	}}, nil)

	rec := app.do(http.MethodGet, "/api/polls/live", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, float64(9), body[0]["total_votes"])
	candidates := body[0]["top_candidates"].([]any)
	assert.Equal(t, float64(6), candidates[0].(map[string]any)["voteCount"])
}

func TestListPolls_FiltersByCategory(t *testing.T) {
	app := newTestApp(t, Options{})
	app.polls.On("ListPolls", mock.Anything, "Senate").Return([]domain.PollSummary{{ID: 1, Title: "S", Category: "Senate"}}, nil)

	rec := app.do(http.MethodGet, "/api/polls?category=Senate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"lastUpdated"`)
	app.polls.AssertExpectations(t)
}

func TestFindByCounty(t *testing.T) {
	app := newTestApp(t, Options{})
	app.polls.On("FindByCounty", mock.Anything, "Kisumu").Return(int64(12), nil)
	app.polls.On("FindByCounty", mock.Anything, "Atlantis").Return(int64(0), domain.ErrPollNotFound)

	rec := app.do(http.MethodGet, "/api/county/Kisumu", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"pollId": 12}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, app.do(http.MethodGet, "/api/county/Atlantis", "").Code)
}

func TestAdminGate(t *testing.T) {
	app := newTestApp(t, Options{})
	body := `{"title": "Governor", "category": "Governor", "region": "Nairobi", "competitors": [{"name": "Alice"}]}`

	rec := app.do(http.MethodPost, "/api/polls", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(http.MethodPost, "/api/polls", body, "Authorization", "Bearer forged")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	app.polls.On("Create", mock.Anything, mock.MatchedBy(func(in ports.PollInput) bool {
		return in.Title == "Governor" && len(in.Competitors) == 1
	})).Return(&domain.Poll{ID: 42}, nil)

	rec = app.do(http.MethodPost, "/api/polls", body, "Authorization", "Bearer "+adminToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"success": true, "id": 42}`, rec.Body.String())

	app.polls.On("Delete", mock.Anything, int64(42)).Return(nil)
	rec = app.do(http.MethodDelete, "/api/polls/42", "", "Authorization", "Bearer "+adminToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthEndpoints(t *testing.T) {
	app := newTestApp(t, Options{})

	rec := app.do(http.MethodPost, "/api/login", `{"username": "admin", "password": "nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(http.MethodPost, "/api/login", `{"username": "admin", "password": "password1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), adminToken)

	auth := []string{"Authorization", "Bearer " + adminToken}
	rec = app.do(http.MethodGet, "/api/me", "", auth...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-hash")

	rec = app.do(http.MethodPut, "/api/update-admin", `{"current_password": "password1", "new_password": "short"}`, auth...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	tooLong := strings.Repeat("a", domain.MaxPasswordLength+8)
	rec = app.do(http.MethodPut, "/api/update-admin", `{"current_password": "password1", "new_password": "`+tooLong+`"}`, auth...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(http.MethodPut, "/api/update-admin", `{"current_password": "wrong", "new_password": "long-enough"}`, auth...)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(http.MethodPut, "/api/update-admin", `{"current_password": "password1", "new_password": "long-enough"}`, auth...)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBlogEndpoints(t *testing.T) {
	app := newTestApp(t, Options{})
	app.posts.On("List", mock.Anything).Return([]*domain.Post{{ID: 1, Title: "T", Content: "C"}}, nil)
	app.posts.On("Get", mock.Anything, int64(9)).Return(nil, domain.ErrPostNotFound)
	app.posts.On("Create", mock.Anything, ports.CreatePostInput{Title: "T", Content: "C"}).Return(&domain.Post{ID: 2, Title: "T", Content: "C"}, nil)

	assert.Equal(t, http.StatusOK, app.do(http.MethodGet, "/api/blogs", "").Code)
	assert.Equal(t, http.StatusNotFound, app.do(http.MethodGet, "/api/blogs/9", "").Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodPost, "/api/blogs", `{"title": "T", "content": "C"}`).Code)

	rec := app.do(http.MethodPost, "/api/blogs", `{"title": "T", "content": "C"}`, "Authorization", "Bearer "+adminToken)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, Options{DB: stubPinger{}})
	assert.Equal(t, http.StatusOK, app.do(http.MethodGet, "/health", "").Code)

	down := newTestApp(t, Options{DB: stubPinger{err: errDatabase}})
	assert.Equal(t, http.StatusServiceUnavailable, down.do(http.MethodGet, "/health", "").Code)

	app.votes.On("CastVote", mock.Anything, mock.Anything).Return(nil)
	app.do(http.MethodPost, "/api/votes", `{"pollId": 1, "competitorId": 1, "voter_id": "v"}`)

	rec := app.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `poll_votes_cast_total{outcome="accepted"} 1`)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="POST"`)
}
