package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
	"github.com/vncsmyrnk/opinionpoll/internal/core/ports"
)

type PollHandler struct {
	polls   ports.PollService
	tallies ports.TallyService
	logger  *zap.Logger
}

func NewPollHandler(polls ports.PollService, tallies ports.TallyService, logger *zap.Logger) *PollHandler {
	return &PollHandler{
		polls:   polls,
		tallies: tallies,
		logger:  logger,
	}
}

type competitorRequest struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Party string `json:"party"`
}

type pollRequest struct {
	Title           string              `json:"title"`
	Category        string              `json:"category"`
	Presidential    string              `json:"presidential"`
	Region          string              `json:"region"`
	County          string              `json:"county"`
	Constituency    string              `json:"constituency"`
	Ward            string              `json:"ward"`
	VotingExpiresAt *time.Time          `json:"voting_expires_at"`
	Published       bool                `json:"published"`
	Competitors     []competitorRequest `json:"competitors"`
}

func (req pollRequest) input() ports.PollInput {
	input := ports.PollInput{
		Title:           req.Title,
		Category:        req.Category,
		Presidential:    req.Presidential,
		Region:          req.Region,
		County:          req.County,
		Constituency:    req.Constituency,
		Ward:            req.Ward,
		VotingExpiresAt: req.VotingExpiresAt,
		Published:       req.Published,
	}
	for _, c := range req.Competitors {
		input.Competitors = append(input.Competitors, ports.CompetitorInput{ID: c.ID, Name: c.Name, Party: c.Party})
	}
	return input
}

type createPollResponse struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id"`
}

type pollDetailResponse struct {
	ID              int64                     `json:"id"`
	Title           string                    `json:"title"`
	Category        string                    `json:"category"`
	Presidential    string                    `json:"presidential"`
	Region          string                    `json:"region"`
	County          string                    `json:"county"`
	Constituency    string                    `json:"constituency"`
	Ward            string                    `json:"ward"`
	VotingExpiresAt *time.Time                `json:"voting_expires_at"`
	Published       bool                      `json:"published"`
	SpoiledVotes    int64                     `json:"spoiled_votes"`
	TotalVotes      int64                     `json:"totalVotes"`
	ValidVotes      int64                     `json:"validVotes"`
	LastUpdated     time.Time                 `json:"lastUpdated"`
	Results         []domain.CompetitorResult `json:"results"`
}

type countyResponse struct {
	PollID int64 `json:"pollId"`
}

func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req pollRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	poll, err := h.polls.Create(r.Context(), req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("poll created", zap.Int64("poll_id", poll.ID), zap.Int("competitors", len(poll.Competitors)))
	writeJSON(w, http.StatusCreated, createPollResponse{Success: true, ID: poll.ID})
}

func (h *PollHandler) UpdatePoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), domain.ErrInvalidPollID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req pollRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	poll, err := h.polls.Update(r.Context(), id, req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, poll)
}

func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), domain.ErrInvalidPollID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.polls.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPoll godoc
// @Summary      Gets a poll with its results
// @Description  Returns the poll, its competitors with vote counts and percentages, and the valid vote total.
// @Tags         polls
// @Produce      json
// @Param        id   path      int  true  "Poll id"
// @Success      200  {object}  domain.PollTally
// @Failure      400,404
// @Router       /polls/{id} [get]
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), domain.ErrInvalidPollID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.tallies.Tally(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	poll := result.Poll
	writeJSON(w, http.StatusOK, pollDetailResponse{
		ID:              poll.ID,
		Title:           poll.Title,
		Category:        poll.Category,
		Presidential:    poll.Presidential,
		Region:          poll.Region,
		County:          poll.County,
		Constituency:    poll.Constituency,
		Ward:            poll.Ward,
		VotingExpiresAt: poll.VotingExpiresAt,
		Published:       poll.Published,
		SpoiledVotes:    poll.SpoiledVotes,
		TotalVotes:      poll.TotalVotes,
		ValidVotes:      result.Tally.ValidVotes,
		LastUpdated:     time.Now().UTC(),
		Results:         result.Tally.Results,
	})
}

func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.polls.ListPolls(r.Context(), strings.TrimSpace(r.URL.Query().Get("category")))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, polls)
}

func (h *PollHandler) LivePolls(w http.ResponseWriter, r *http.Request) {
	entries, err := h.tallies.LiveLeaderboard(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *PollHandler) FindByCounty(w http.ResponseWriter, r *http.Request) {
	id, err := h.polls.FindByCounty(r.Context(), chi.URLParam(r, "countyName"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, countyResponse{PollID: id})
}
