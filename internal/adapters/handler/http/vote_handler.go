package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
	"github.com/vncsmyrnk/opinionpoll/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
	metrics *Metrics
	logger  *zap.Logger
}

func NewVoteHandler(service ports.VoteService, metrics *Metrics, logger *zap.Logger) *VoteHandler {
	return &VoteHandler{
		service: service,
		metrics: metrics,
		logger:  logger,
	}
}

type voteRequest struct {
	PollID       flexibleID `json:"pollId"`
	CompetitorID flexibleID `json:"competitorId"`
	VoterID      string     `json:"voter_id"`
	VoterIDAlt   string     `json:"voterId"`
}

func (req voteRequest) voter() string {
	if req.VoterID != "" {
		return req.VoterID
	}
	return req.VoterIDAlt
}

type voteStatusResponse struct {
	AlreadyVoted bool `json:"alreadyVoted"`
}

// CastVote godoc
// @Summary      Casts a vote
// @Description  Records one vote per voter and poll. Both voter_id and voterId are accepted.
// @Tags         votes
// @Accept       json
// @Produce      json
// @Param        vote  body  voteRequest  true  "Poll, competitor and voter"
// @Success      200
// @Failure      400,403,404,413,429
// @Router       /votes [post]
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.metrics.ObserveVote(err)
		writeError(w, r, h.logger, err)
		return
	}

	err := h.service.CastVote(r.Context(), ports.VoteInput{
		PollID:       int64(req.PollID),
		CompetitorID: int64(req.CompetitorID),
		VoterID:      req.voter(),
	})
	h.metrics.ObserveVote(err)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeMessage(w, http.StatusOK, "Vote recorded successfully!")
}

// VoteStatus godoc
// @Summary      Tells whether a voter already voted in a poll
// @Tags         votes
// @Produce      json
// @Param        pollId    query     int     true  "Poll id"
// @Param        voter_id  query     string  true  "Voter id"
// @Success      200       {object}  voteStatusResponse
// @Failure      400
// @Router       /votes/status [get]
func (h *VoteHandler) VoteStatus(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	voterID := query.Get("voter_id")
	if voterID == "" {
		voterID = query.Get("voterId")
	}
	if query.Get("pollId") == "" || voterID == "" {
		writeMessage(w, http.StatusBadRequest, "Missing pollId or voter_id")
		return
	}

	pollID, err := parseID(query.Get("pollId"), domain.ErrInvalidPollID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	voted, err := h.service.HasVoted(r.Context(), pollID, voterID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, voteStatusResponse{AlreadyVoted: voted})
}
