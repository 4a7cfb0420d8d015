package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vncsmyrnk/pollroom/internal/core/domain"
	"github.com/vncsmyrnk/pollroom/internal/core/ports"
)

// pollEntry guards one poll, so votes on different polls never contend.
type pollEntry struct {
	mu   sync.Mutex
	poll *domain.Poll
}

type pollRepository struct {
	mu    sync.RWMutex
	polls map[string]*pollEntry
}

func NewPollRepository() ports.PollRepository {
	return &pollRepository{
		polls: make(map[string]*pollEntry),
	}
}

func (r *pollRepository) Save(_ context.Context, poll *domain.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.polls[poll.ID]; exists {
		return fmt.Errorf("poll with id %s already exists", poll.ID)
	}
	r.polls[poll.ID] = &pollEntry{poll: poll.Clone()}
	return nil
}

func (r *pollRepository) entry(id string) (*pollEntry, bool) {
	r.mu.RLock()
	e, ok := r.polls[id]
	r.mu.RUnlock()
	return e, ok
}

func (r *pollRepository) GetByID(_ context.Context, id string) (*domain.Poll, error) {
	e, ok := r.entry(id)
	if !ok {
		return nil, domain.ErrPollNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.poll.Clone(), nil
}

func (r *pollRepository) List(_ context.Context, limit, offset int) ([]*domain.Poll, error) {
	r.mu.RLock()
	entries := make([]*pollEntry, 0, len(r.polls))
	for _, e := range r.polls {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	polls := make([]*domain.Poll, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		polls = append(polls, e.poll.Clone())
		e.mu.Unlock()
	}

	sort.Slice(polls, func(i, j int) bool {
		if polls[i].CreatedAt.Equal(polls[j].CreatedAt) {
			return polls[i].ID < polls[j].ID
		}
		return polls[i].CreatedAt.After(polls[j].CreatedAt)
	})

	if offset >= len(polls) {
		return []*domain.Poll{}, nil
	}
	polls = polls[offset:]
	if limit > 0 && limit < len(polls) {
		polls = polls[:limit]
	}
	return polls, nil
}

func (r *pollRepository) ApplyVote(_ context.Context, pollID, optionID string) (*domain.Poll, error) {
	e, ok := r.entry(pollID)
	if !ok {
		return nil, domain.ErrPollNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	opt, ok := e.poll.Option(optionID)
	if !ok {
		return nil, domain.ErrOptionNotFound
	}
	opt.Votes++

	return e.poll.Clone(), nil
}
