package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/pollroom/internal/core/domain"
	"github.com/vncsmyrnk/pollroom/internal/core/ports"
)

const pageSize = 10

type pollService struct {
	repo ports.PollRepository
	now  func() time.Time
}

func NewPollService(repo ports.PollRepository) ports.PollService {
	return &pollService{
		repo: repo,
		now:  time.Now,
	}
}

func (s *pollService) Create(ctx context.Context, input ports.CreatePollInput) (*domain.Poll, error) {
	now := s.now().UTC().Truncate(time.Microsecond)

	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrValidation)
	}
	if len(input.Options) < domain.MinOptions || len(input.Options) > domain.MaxOptions {
		return nil, fmt.Errorf("%w: between %d and %d options are required, got %d",
			domain.ErrValidation, domain.MinOptions, domain.MaxOptions, len(input.Options))
	}

	authorID := strings.TrimSpace(input.AuthorID)
	if authorID == "" {
		authorID = domain.AnonymousAuthor
	}

	expiresAt, err := resolveExpiry(now, input.ExpiresAt, input.ExpiresInHours)
	if err != nil {
		return nil, err
	}

	poll := &domain.Poll{
		ID:        uuid.NewString(),
		Question:  question,
		Options:   make([]domain.PollOption, 0, len(input.Options)),
		CreatedAt: now,
		ExpiresAt: expiresAt,
		AuthorID:  authorID,
	}

	seen := make(map[string]struct{}, len(input.Options))
	for i, opt := range input.Options {
		text := strings.TrimSpace(opt.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: option %d has no text", domain.ErrValidation, i+1)
		}

		id := strings.TrimSpace(opt.ID)
		if id == "" {
			id = uuid.NewString()
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicated option id %q", domain.ErrValidation, id)
		}
		seen[id] = struct{}{}

		poll.Options = append(poll.Options, domain.PollOption{ID: id, Text: text})
	}

	if err := s.repo.Save(ctx, poll); err != nil {
		return nil, err
	}

	return poll, nil
}

// resolveExpiry prefers an explicit deadline over a relative one.
// Zero hours means the poll never expires.
func resolveExpiry(now time.Time, expiresAt *time.Time, hours int) (*time.Time, error) {
	if expiresAt != nil {
		t := expiresAt.UTC().Truncate(time.Microsecond)
		if !t.After(now) {
			return nil, fmt.Errorf("%w: expiresAt must be in the future", domain.ErrValidation)
		}
		return &t, nil
	}

	switch {
	case hours < 0:
		return nil, fmt.Errorf("%w: expiresInHours cannot be negative", domain.ErrValidation)
	case hours == 0:
		return nil, nil
	}
	t := now.Add(time.Duration(hours) * time.Hour)
	return &t, nil
}

func (s *pollService) GetPoll(ctx context.Context, id string) (*domain.Poll, error) {
	if id == "" {
		return nil, domain.ErrPollNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *pollService) ListPolls(ctx context.Context, input ports.ListPollsInput) ([]*domain.Poll, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	return s.repo.List(ctx, pageSize, (page-1)*pageSize)
}

func (s *pollService) Results(ctx context.Context, id string) (*domain.PollResults, error) {
	poll, err := s.GetPoll(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.NewPollResults(poll, s.now()), nil
}
