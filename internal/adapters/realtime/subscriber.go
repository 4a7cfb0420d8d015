package realtime

import "github.com/google/uuid"

// Subscriber is the hub side of one connection: an id for logs and a bounded
// outbound queue drained by the connection's writer.
type Subscriber struct {
	id   string
	send chan []byte
}

func NewSubscriber(buffer int) *Subscriber {
	return &Subscriber{
		id:   uuid.NewString(),
		send: make(chan []byte, buffer),
	}
}

func (s *Subscriber) ID() string {
	return s.id
}

// Messages is closed once the hub unregisters the subscriber.
func (s *Subscriber) Messages() <-chan []byte {
	return s.send
}
