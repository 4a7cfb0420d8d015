package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vncsmyrnk/pollroom/internal/core/domain"
	"github.com/vncsmyrnk/pollroom/internal/core/ports"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	lookupTimeout  = 5 * time.Second
)

// client pumps one websocket. Only writePump writes to conn; replies from
// readPump go through the subscriber queue so they stay ordered with
// broadcasts.
type client struct {
	hub    *Hub
	conn   *websocket.Conn
	sub    *Subscriber
	polls  ports.PollService
	logger *slog.Logger

	// ctx lives as long as the connection; readPump cancels it on exit.
	ctx    context.Context
	cancel context.CancelFunc
}

func (c *client) readPump() {
	defer func() {
		c.cancel()
		c.hub.Unregister(c.sub)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read failed", "subscriber", c.sub.ID(), "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.reply(Message{Type: TypeError, Message: "malformed message"})
			continue
		}
		if !c.handle(msg) {
			return
		}
	}
}

// handle reports false once the subscriber is gone and reading should stop.
func (c *client) handle(msg Message) bool {
	switch msg.Type {
	case TypeJoinRoom:
		return c.join(msg.PollID)
	case TypeLeaveRoom:
		c.hub.Leave(msg.PollID, c.sub)
		return c.reply(Message{Type: TypeLeft, PollID: msg.PollID})
	case TypePing:
		return c.reply(Message{Type: TypePong})
	default:
		return c.reply(Message{Type: TypeError, Message: "unknown message type"})
	}
}

func (c *client) join(pollID string) bool {
	if pollID == "" {
		return c.reply(Message{Type: TypeError, Message: "pollId is required"})
	}

	ctx, cancel := context.WithTimeout(c.ctx, lookupTimeout)
	defer cancel()

	if _, err := c.polls.GetPoll(ctx, pollID); err != nil {
		if errors.Is(err, domain.ErrPollNotFound) {
			return c.reply(Message{Type: TypeError, PollID: pollID, Message: domain.ErrPollNotFound.Error()})
		}
		c.logger.Error("room lookup failed", "poll_id", pollID, "error", err)
		return c.reply(Message{Type: TypeError, PollID: pollID, Message: "room unavailable"})
	}

	if err := c.hub.Join(pollID, c.sub); err != nil {
		return false
	}
	return c.reply(Message{Type: TypeJoined, PollID: pollID})
}

func (c *client) reply(msg Message) bool {
	return c.hub.Send(c.sub, encode(msg))
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.sub.Messages():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
