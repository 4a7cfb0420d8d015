package ports

import (
	"context"
	"time"

	"github.com/vncsmyrnk/pollroom/internal/core/domain"
)

// PollRepository owns every poll record. Implementations return copies and
// must apply votes atomically per poll.
type PollRepository interface {
	Save(ctx context.Context, poll *domain.Poll) error
	GetByID(ctx context.Context, id string) (*domain.Poll, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Poll, error)
	ApplyVote(ctx context.Context, pollID, optionID string) (*domain.Poll, error)
}

type CreateOptionInput struct {
	ID   string
	Text string
}

type CreatePollInput struct {
	Question       string
	Options        []CreateOptionInput
	ExpiresAt      *time.Time
	ExpiresInHours int
	AuthorID       string
}

type ListPollsInput struct {
	Page int
}

type PollService interface {
	Create(ctx context.Context, input CreatePollInput) (*domain.Poll, error)
	GetPoll(ctx context.Context, id string) (*domain.Poll, error)
	ListPolls(ctx context.Context, input ListPollsInput) ([]*domain.Poll, error)
	Results(ctx context.Context, id string) (*domain.PollResults, error)
}
