package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/pollroom/internal/core/ports"
)

const maxBodyBytes = 64 << 10

type PollHandler struct {
	service ports.PollService
	logger  *slog.Logger
}

func NewPollHandler(service ports.PollService, logger *slog.Logger) *PollHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PollHandler{
		service: service,
		logger:  logger,
	}
}

type createPollRequest struct {
	Question       string          `json:"question"`
	Options        []optionRequest `json:"options"`
	ExpiresAt      *expiryTime     `json:"expiresAt"`
	ExpiresInHours int             `json:"expiresInHours"`
	AuthorID       string          `json:"authorId"`
}

// optionRequest accepts either a bare string or {id, text, votes}. Client
// supplied vote counts are ignored: every poll starts at zero.
type optionRequest struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// expiryTime accepts epoch milliseconds, as browsers send Date.now()
// arithmetic, or an RFC 3339 string.
type expiryTime time.Time

func (e *expiryTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var t time.Time
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		*e = expiryTime(t)
		return nil
	}

	var ms float64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("expiresAt must be epoch milliseconds or an RFC 3339 string: %w", err)
	}
	*e = expiryTime(time.UnixMilli(int64(ms)).UTC())
	return nil
}

func (e *expiryTime) value() *time.Time {
	if e == nil {
		return nil
	}
	t := time.Time(*e)
	return &t
}

func (o *optionRequest) UnmarshalJSON(data []byte) error {
	if len(bytes.TrimSpace(data)) > 0 && bytes.TrimSpace(data)[0] == '"' {
		o.ID = ""
		return json.Unmarshal(data, &o.Text)
	}
	type plain optionRequest
	return json.Unmarshal(data, (*plain)(o))
}

func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req createPollRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	input := ports.CreatePollInput{
		Question:       req.Question,
		Options:        make([]ports.CreateOptionInput, 0, len(req.Options)),
		ExpiresAt:      req.ExpiresAt.value(),
		ExpiresInHours: req.ExpiresInHours,
		AuthorID:       req.AuthorID,
	}
	for _, opt := range req.Options {
		input.Options = append(input.Options, ports.CreateOptionInput{ID: opt.ID, Text: opt.Text})
	}

	poll, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("poll created", "poll_id", poll.ID, "options", len(poll.Options))
	writeJSON(w, http.StatusCreated, poll)
}

func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	poll, err := h.service.GetPoll(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, poll)
}

func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", "page must be a positive integer")
			return
		}
		page = p
	}

	polls, err := h.service.ListPolls(r.Context(), ports.ListPollsInput{Page: page})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, polls)
}

func (h *PollHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.Results(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
