package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vncsmyrnk/pollroom/internal/core/domain"
	"github.com/vncsmyrnk/pollroom/internal/core/ports"
)

type voteService struct {
	pollRepo  ports.PollRepository
	voteRepo  ports.VoteRepository
	publisher ports.RoomPublisher
	locks     *keyedMutex
	now       func() time.Time
}

func NewVoteService(pollRepo ports.PollRepository, voteRepo ports.VoteRepository, publisher ports.RoomPublisher) ports.VoteService {
	return &voteService{
		pollRepo:  pollRepo,
		voteRepo:  voteRepo,
		publisher: publisher,
		locks:     newKeyedMutex(),
		now:       time.Now,
	}
}

// CastVote applies one vote. Everything from loading the poll to publishing
// the update runs under the poll's lock, so votes on one poll are totally
// ordered and each voter token is accepted at most once.
func (s *voteService) CastVote(ctx context.Context, input ports.VoteInput) (*domain.Poll, error) {
	if strings.TrimSpace(input.VoterToken) == "" {
		return nil, fmt.Errorf("%w: voterToken is required", domain.ErrValidation)
	}
	if input.OptionID == "" {
		return nil, fmt.Errorf("%w: optionId is required", domain.ErrValidation)
	}

	unlock := s.locks.Lock(input.PollID)
	defer unlock()

	poll, err := s.pollRepo.GetByID(ctx, input.PollID)
	if err != nil {
		return nil, err
	}

	if poll.IsExpired(s.now()) {
		return nil, domain.ErrExpired
	}

	hasVoted, err := s.voteRepo.HasVoted(ctx, input.PollID, input.VoterToken)
	if err != nil {
		return nil, err
	}
	if hasVoted {
		return nil, domain.ErrAlreadyVoted
	}

	if _, ok := poll.Option(input.OptionID); !ok {
		return nil, domain.ErrInvalidOption
	}

	vote := &domain.Vote{
		PollID:     input.PollID,
		OptionID:   input.OptionID,
		VoterToken: input.VoterToken,
		CreatedAt:  s.now().UTC(),
	}
	updated, err := s.record(ctx, vote)
	if err != nil {
		if errors.Is(err, domain.ErrOptionNotFound) {
			return nil, domain.ErrInvalidOption
		}
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.Publish(updated)
	}

	return updated, nil
}

// record stores the voter record and applies the vote. Repositories that
// can do both atomically are used as such; otherwise the record is written
// first and removed again if the counter update fails.
func (s *voteService) record(ctx context.Context, vote *domain.Vote) (*domain.Poll, error) {
	if recorder, ok := s.voteRepo.(ports.VoteRecorder); ok {
		return recorder.RecordVote(ctx, vote)
	}

	if err := s.voteRepo.SaveVote(ctx, vote); err != nil {
		return nil, err
	}

	updated, err := s.pollRepo.ApplyVote(ctx, vote.PollID, vote.OptionID)
	if err != nil {
		// the counter did not move, so the voter record must go too
		if delErr := s.voteRepo.DeleteVote(context.WithoutCancel(ctx), vote.PollID, vote.VoterToken); delErr != nil {
			return nil, errors.Join(err, fmt.Errorf("failed to roll back vote record: %w", delErr))
		}
		return nil, err
	}
	return updated, nil
}

func (s *voteService) HasVoted(ctx context.Context, pollID, voterToken string) (bool, error) {
	if _, err := s.pollRepo.GetByID(ctx, pollID); err != nil {
		return false, err
	}
	return s.voteRepo.HasVoted(ctx, pollID, voterToken)
}
