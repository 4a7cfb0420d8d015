package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/pollroom/internal/core/domain"
)

func samplePoll(id string, createdAt time.Time) *domain.Poll {
	return &domain.Poll{
		ID:        id,
		Question:  "Coffee or Tea?",
		CreatedAt: createdAt,
		AuthorID:  domain.AnonymousAuthor,
		Options: []domain.PollOption{
			{ID: "coffee", Text: "Coffee"},
			{ID: "tea", Text: "Tea"},
		},
	}
}

func TestPollRepositorySaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewPollRepository()
	poll := samplePoll("p1", time.Now())

	require.NoError(t, repo.Save(ctx, poll))
	assert.Error(t, repo.Save(ctx, poll), "duplicate ids are rejected")

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, poll, got)

	// callers own their copies
	got.Options[0].Votes = 42
	poll.Options[1].Votes = 42
	again, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Zero(t, again.Options[0].Votes)
	assert.Zero(t, again.Options[1].Votes)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
}

func TestPollRepositoryApplyVote(t *testing.T) {
	ctx := context.Background()
	repo := NewPollRepository()
	require.NoError(t, repo.Save(ctx, samplePoll("p1", time.Now())))

	updated, err := repo.ApplyVote(ctx, "p1", "tea")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), updated.Options[0].Votes)
	assert.Equal(t, uint64(1), updated.Options[1].Votes)

	_, err = repo.ApplyVote(ctx, "p1", "juice")
	assert.ErrorIs(t, err, domain.ErrOptionNotFound)

	_, err = repo.ApplyVote(ctx, "missing", "tea")
	assert.ErrorIs(t, err, domain.ErrPollNotFound)

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.TotalVotes())
}

func TestPollRepositoryConcurrentApplyVote(t *testing.T) {
	ctx := context.Background()
	repo := NewPollRepository()
	require.NoError(t, repo.Save(ctx, samplePoll("p1", time.Now())))
	require.NoError(t, repo.Save(ctx, samplePoll("p2", time.Now())))

	const workers = 200
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pollID := "p1"
			if i%2 == 1 {
				pollID = "p2"
			}
			_, err := repo.ApplyVote(ctx, pollID, "coffee")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for _, id := range []string{"p1", "p2"} {
		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, uint64(workers/2), got.Options[0].Votes, id)
	}
}

func TestPollRepositoryList(t *testing.T) {
	ctx := context.Background()
	repo := NewPollRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(ctx, samplePoll(fmt.Sprintf("p%d", i), base.Add(time.Duration(i)*time.Minute))))
	}

	polls, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, polls, 2)
	assert.Equal(t, "p4", polls[0].ID)
	assert.Equal(t, "p3", polls[1].ID)

	polls, err = repo.List(ctx, 2, 4)
	require.NoError(t, err)
	require.Len(t, polls, 1)
	assert.Equal(t, "p0", polls[0].ID)

	polls, err = repo.List(ctx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, polls)
}
