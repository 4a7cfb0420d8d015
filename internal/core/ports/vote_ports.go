package ports

import (
	"context"

	"github.com/vncsmyrnk/pollroom/internal/core/domain"
)

type VoteRepository interface {
	SaveVote(ctx context.Context, vote *domain.Vote) error
	DeleteVote(ctx context.Context, pollID, voterToken string) error
	HasVoted(ctx context.Context, pollID, voterToken string) (bool, error)
}

// VoteRecorder is implemented by vote repositories that can store the voter
// record and apply the vote in one atomic step. The returned poll reflects
// exactly this vote.
type VoteRecorder interface {
	RecordVote(ctx context.Context, vote *domain.Vote) (*domain.Poll, error)
}

type VoteInput struct {
	PollID     string
	OptionID   string
	VoterToken string
}

type VoteService interface {
	CastVote(ctx context.Context, input VoteInput) (*domain.Poll, error)
	HasVoted(ctx context.Context, pollID, voterToken string) (bool, error)
}
