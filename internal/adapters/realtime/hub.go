package realtime

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/vncsmyrnk/pollroom/internal/core/domain"
)

var ErrNotRegistered = errors.New("subscriber is not registered")

// Hub keeps the rooms (poll id -> subscribers) and fans poll updates out to
// them. Membership lives exactly as long as the subscriber is registered.
type Hub struct {
	mu     sync.Mutex
	rooms  map[string]map[*Subscriber]struct{}
	subs   map[*Subscriber]map[string]struct{} // subscriber -> joined poll ids
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		rooms:  make(map[string]map[*Subscriber]struct{}),
		subs:   make(map[*Subscriber]map[string]struct{}),
		logger: logger,
	}
}

func (h *Hub) Register(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub]; !ok {
		h.subs[sub] = make(map[string]struct{})
	}
}

// Unregister drops sub from every room and closes its queue. Safe to call
// more than once.
func (h *Hub) Unregister(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unregisterLocked(sub)
}

func (h *Hub) unregisterLocked(sub *Subscriber) {
	joined, ok := h.subs[sub]
	if !ok {
		return
	}
	for pollID := range joined {
		h.removeFromRoomLocked(pollID, sub)
	}
	delete(h.subs, sub)
	close(sub.send)
}

func (h *Hub) removeFromRoomLocked(pollID string, sub *Subscriber) {
	room, ok := h.rooms[pollID]
	if !ok {
		return
	}
	delete(room, sub)
	if len(room) == 0 {
		delete(h.rooms, pollID)
	}
}

func (h *Hub) Join(pollID string, sub *Subscriber) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	joined, ok := h.subs[sub]
	if !ok {
		return ErrNotRegistered
	}

	room, ok := h.rooms[pollID]
	if !ok {
		room = make(map[*Subscriber]struct{})
		h.rooms[pollID] = room
	}
	room[sub] = struct{}{}
	joined[pollID] = struct{}{}
	return nil
}

func (h *Hub) Leave(pollID string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	joined, ok := h.subs[sub]
	if !ok {
		return
	}
	delete(joined, pollID)
	h.removeFromRoomLocked(pollID, sub)
}

// Send queues msg for a single subscriber. It reports false when the
// subscriber is gone or its queue is full, in which case it is evicted.
func (h *Hub) Send(sub *Subscriber, msg []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[sub]; !ok {
		return false
	}
	return h.trySendLocked(sub, msg)
}

func (h *Hub) trySendLocked(sub *Subscriber, msg []byte) bool {
	select {
	case sub.send <- msg:
		return true
	default:
		h.logger.Warn("dropping slow subscriber", "subscriber", sub.id)
		h.unregisterLocked(sub)
		return false
	}
}

// Publish sends the full poll to everyone in its room. It never waits on a
// connection: subscribers that cannot keep up are evicted instead.
func (h *Hub) Publish(poll *domain.Poll) {
	msg := encode(Message{Type: TypePollUpdated, PollID: poll.ID, Poll: poll})

	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[poll.ID]
	if len(room) == 0 {
		return
	}

	// eviction mutates the room, so iterate over a snapshot
	targets := make([]*Subscriber, 0, len(room))
	for sub := range room {
		targets = append(targets, sub)
	}
	for _, sub := range targets {
		h.trySendLocked(sub, msg)
	}
	h.logger.Debug("poll update published", "poll_id", poll.ID, "subscribers", len(targets))
}

func (h *Hub) RoomSize(pollID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[pollID])
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close unregisters every subscriber, which makes their writers hang up.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		h.unregisterLocked(sub)
	}
}
