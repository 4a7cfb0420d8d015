package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/pollroom/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/pollroom/internal/core/domain"
	"github.com/vncsmyrnk/pollroom/internal/core/ports"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestPollService(repo ports.PollRepository) *pollService {
	return &pollService{repo: repo, now: func() time.Time { return testNow }}
}

func options(texts ...string) []ports.CreateOptionInput {
	opts := make([]ports.CreateOptionInput, 0, len(texts))
	for _, text := range texts {
		opts = append(opts, ports.CreateOptionInput{Text: text})
	}
	return opts
}

func TestCreatePoll(t *testing.T) {
	ctx := context.Background()
	svc := newTestPollService(memory.NewPollRepository())

	poll, err := svc.Create(ctx, ports.CreatePollInput{
		Question: "  Coffee or Tea?  ",
		Options: []ports.CreateOptionInput{
			{ID: "o-1", Text: " Coffee "},
			{Text: "Tea"},
		},
		AuthorID: "   ",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, poll.ID)
	assert.Equal(t, "Coffee or Tea?", poll.Question)
	assert.Equal(t, domain.AnonymousAuthor, poll.AuthorID)
	assert.Equal(t, testNow, poll.CreatedAt)
	assert.Nil(t, poll.ExpiresAt)
	require.Len(t, poll.Options, 2)
	assert.Equal(t, "o-1", poll.Options[0].ID)
	assert.Equal(t, "Coffee", poll.Options[0].Text)
	assert.NotEmpty(t, poll.Options[1].ID)
	assert.Equal(t, "Tea", poll.Options[1].Text)
	assert.Zero(t, poll.TotalVotes())

	stored, err := svc.GetPoll(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, poll, stored)
}

func TestCreatePollAssignsUniqueIDs(t *testing.T) {
	ctx := context.Background()
	svc := newTestPollService(memory.NewPollRepository())

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		poll, err := svc.Create(ctx, ports.CreatePollInput{Question: "Q", Options: options("A", "B")})
		require.NoError(t, err)
		assert.False(t, seen[poll.ID], "id %s reused", poll.ID)
		seen[poll.ID] = true
	}
}

func TestCreatePollExpiry(t *testing.T) {
	ctx := context.Background()
	svc := newTestPollService(memory.NewPollRepository())

	poll, err := svc.Create(ctx, ports.CreatePollInput{Question: "Q", Options: options("A", "B"), ExpiresInHours: 24})
	require.NoError(t, err)
	require.NotNil(t, poll.ExpiresAt)
	assert.Equal(t, testNow.Add(24*time.Hour), *poll.ExpiresAt)

	deadline := testNow.Add(time.Hour)
	poll, err = svc.Create(ctx, ports.CreatePollInput{Question: "Q", Options: options("A", "B"), ExpiresAt: &deadline, ExpiresInHours: 24})
	require.NoError(t, err)
	require.NotNil(t, poll.ExpiresAt)
	assert.Equal(t, deadline, *poll.ExpiresAt, "explicit deadline wins")
}

func TestCreatePollValidation(t *testing.T) {
	past := testNow.Add(-time.Minute)

	tests := []struct {
		name  string
		input ports.CreatePollInput
	}{
		{"empty question", ports.CreatePollInput{Question: "", Options: options("A", "B")}},
		{"blank question", ports.CreatePollInput{Question: "   ", Options: options("A", "B")}},
		{"one option", ports.CreatePollInput{Question: "Q", Options: options("A")}},
		{"no options", ports.CreatePollInput{Question: "Q"}},
		{"eleven options", ports.CreatePollInput{Question: "Q", Options: options(strings.Split("abcdefghijk", "")...)}},
		{"empty option text", ports.CreatePollInput{Question: "Q", Options: options("A", "")}},
		{"blank option text", ports.CreatePollInput{Question: "Q", Options: options("A", "  ", "C")}},
		{"duplicated option id", ports.CreatePollInput{Question: "Q", Options: []ports.CreateOptionInput{{ID: "x", Text: "A"}, {ID: "x", Text: "B"}}}},
		{"deadline in the past", ports.CreatePollInput{Question: "Q", Options: options("A", "B"), ExpiresAt: &past}},
		{"negative hours", ports.CreatePollInput{Question: "Q", Options: options("A", "B"), ExpiresInHours: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := memory.NewPollRepository()
			svc := newTestPollService(repo)

			_, err := svc.Create(context.Background(), tt.input)
			require.ErrorIs(t, err, domain.ErrValidation)

			polls, err := repo.List(context.Background(), 0, 0)
			require.NoError(t, err)
			assert.Empty(t, polls, "nothing is stored on failure")
		})
	}
}

func TestCreatePollAcceptsTenOptions(t *testing.T) {
	svc := newTestPollService(memory.NewPollRepository())
	poll, err := svc.Create(context.Background(), ports.CreatePollInput{Question: "Q", Options: options(strings.Split("abcdefghij", "")...)})
	require.NoError(t, err)
	assert.Len(t, poll.Options, domain.MaxOptions)
}

func TestGetPollNotFound(t *testing.T) {
	svc := newTestPollService(memory.NewPollRepository())

	_, err := svc.GetPoll(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrPollNotFound)

	_, err = svc.GetPoll(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrPollNotFound)

	_, err = svc.Results(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
}

func TestListPollsPaginates(t *testing.T) {
	ctx := context.Background()
	svc := newTestPollService(memory.NewPollRepository())
	for i := 0; i < pageSize+3; i++ {
		_, err := svc.Create(ctx, ports.CreatePollInput{Question: "Q", Options: options("A", "B")})
		require.NoError(t, err)
	}

	first, err := svc.ListPolls(ctx, ports.ListPollsInput{Page: 0})
	require.NoError(t, err)
	assert.Len(t, first, pageSize)

	second, err := svc.ListPolls(ctx, ports.ListPollsInput{Page: 2})
	require.NoError(t, err)
	assert.Len(t, second, 3)
}

func TestResults(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPollRepository()
	svc := newTestPollService(repo)

	poll, err := svc.Create(ctx, ports.CreatePollInput{Question: "Q", Options: options("A", "B"), ExpiresInHours: 1})
	require.NoError(t, err)
	_, err = repo.ApplyVote(ctx, poll.ID, poll.Options[1].ID)
	require.NoError(t, err)

	res, err := svc.Results(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.TotalVotes)
	assert.Equal(t, []string{poll.Options[1].ID}, res.Leaders)
	assert.False(t, res.Expired)

	svc.now = func() time.Time { return testNow.Add(2 * time.Hour) }
	res, err = svc.Results(ctx, poll.ID)
	require.NoError(t, err)
	assert.True(t, res.Expired)
}
