package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/vncsmyrnk/pollroom/internal/core/ports"
)

const sendBuffer = 64

var _ ports.RoomPublisher = (*Hub)(nil)

// Handler upgrades requests to websockets and attaches them to the hub.
type Handler struct {
	hub      *Hub
	polls    ports.PollService
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewHandler(hub *Hub, polls ports.PollService, allowedOrigins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		hub:    hub,
		polls:  polls,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 || slices.Contains(allowed, "*") {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already answered with an HTTP error
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	sub := NewSubscriber(sendBuffer)
	h.hub.Register(sub)
	h.logger.Debug("websocket connected", "subscriber", sub.ID(), "remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(context.Background())
	c := &client{
		hub:    h.hub,
		conn:   conn,
		sub:    sub,
		polls:  h.polls,
		logger: h.logger,
		ctx:    ctx,
		cancel: cancel,
	}
	go c.writePump()
	go c.readPump()
}
