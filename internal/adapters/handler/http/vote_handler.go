package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/pollroom/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
	logger  *slog.Logger
}

func NewVoteHandler(service ports.VoteService, logger *slog.Logger) *VoteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &VoteHandler{
		service: service,
		logger:  logger,
	}
}

type voteRequest struct {
	OptionID   string `json:"optionId"`
	VoterToken string `json:"voterToken"`
}

type hasVotedResponse struct {
	Voted bool `json:"voted"`
}

func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	poll, err := h.service.CastVote(r.Context(), ports.VoteInput{
		PollID:     chi.URLParam(r, "id"),
		OptionID:   req.OptionID,
		VoterToken: req.VoterToken,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, poll)
}

func (h *VoteHandler) HasVoted(w http.ResponseWriter, r *http.Request) {
	voted, err := h.service.HasVoted(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "token"))
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, hasVotedResponse{Voted: voted})
}
