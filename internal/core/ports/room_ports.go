package ports

import "github.com/vncsmyrnk/pollroom/internal/core/domain"

// RoomPublisher fans an updated poll out to everyone watching its room.
// Publish must not block on slow subscribers.
type RoomPublisher interface {
	Publish(poll *domain.Poll)
}
