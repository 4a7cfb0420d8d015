package memory

import (
	"context"
	"sync"

	"github.com/vncsmyrnk/pollroom/internal/core/domain"
	"github.com/vncsmyrnk/pollroom/internal/core/ports"
)

type voteRepository struct {
	mu    sync.Mutex
	votes map[string]map[string]domain.Vote // poll id -> voter token -> vote
}

func NewVoteRepository() ports.VoteRepository {
	return &voteRepository{
		votes: make(map[string]map[string]domain.Vote),
	}
}

func (r *voteRepository) SaveVote(_ context.Context, vote *domain.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	voters, ok := r.votes[vote.PollID]
	if !ok {
		voters = make(map[string]domain.Vote)
		r.votes[vote.PollID] = voters
	}
	if _, voted := voters[vote.VoterToken]; voted {
		return domain.ErrAlreadyVoted
	}
	voters[vote.VoterToken] = *vote
	return nil
}

func (r *voteRepository) DeleteVote(_ context.Context, pollID, voterToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if voters, ok := r.votes[pollID]; ok {
		delete(voters, voterToken)
		if len(voters) == 0 {
			delete(r.votes, pollID)
		}
	}
	return nil
}

func (r *voteRepository) HasVoted(_ context.Context, pollID, voterToken string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, voted := r.votes[pollID][voterToken]
	return voted, nil
}
