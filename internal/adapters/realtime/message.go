package realtime

import (
	"encoding/json"

	"github.com/vncsmyrnk/pollroom/internal/core/domain"
)

const (
	TypeJoinRoom    = "join-room"
	TypeLeaveRoom   = "leave-room"
	TypePing        = "ping"
	TypeJoined      = "joined"
	TypeLeft        = "left"
	TypePong        = "pong"
	TypePollUpdated = "poll-updated"
	TypeError       = "error"
)

// Message is the envelope of every websocket frame in both directions.
type Message struct {
	Type    string       `json:"type"`
	PollID  string       `json:"pollId,omitempty"`
	Poll    *domain.Poll `json:"poll,omitempty"`
	Message string       `json:"message,omitempty"`
}

func encode(m Message) []byte {
	// Message only holds strings and a poll, so encoding cannot fail.
	b, _ := json.Marshal(m)
	return b
}
