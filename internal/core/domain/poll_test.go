package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPoll(expiresAt *time.Time, votes ...uint64) *Poll {
	p := &Poll{
		ID:        "p1",
		Question:  "Coffee or Tea?",
		CreatedAt: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		ExpiresAt: expiresAt,
		AuthorID:  AnonymousAuthor,
	}
	for i, v := range votes {
		p.Options = append(p.Options, PollOption{ID: string(rune('a' + i)), Text: "opt", Votes: v})
	}
	return p
}

func TestPollIsExpired(t *testing.T) {
	deadline := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt *time.Time
		now       time.Time
		want      bool
	}{
		{"no deadline", nil, deadline.Add(1000 * time.Hour), false},
		{"before deadline", &deadline, deadline.Add(-time.Second), false},
		{"at deadline", &deadline, deadline, false},
		{"after deadline", &deadline, deadline.Add(time.Nanosecond), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPoll(tt.expiresAt, 0, 0)
			assert.Equal(t, tt.want, p.IsExpired(tt.now))
		})
	}
}

func TestPollCloneIsIndependent(t *testing.T) {
	deadline := time.Now().Add(time.Hour)
	p := newTestPoll(&deadline, 1, 2)

	c := p.Clone()
	c.Options[0].Votes = 99
	*c.ExpiresAt = c.ExpiresAt.Add(time.Hour)

	assert.Equal(t, uint64(1), p.Options[0].Votes)
	assert.Equal(t, deadline, *p.ExpiresAt)
}

func TestPollOptionLookup(t *testing.T) {
	p := newTestPoll(nil, 3, 4)

	opt, ok := p.Option("b")
	require.True(t, ok)
	assert.Equal(t, uint64(4), opt.Votes)

	_, ok = p.Option("zzz")
	assert.False(t, ok)
	assert.Equal(t, uint64(7), p.TotalVotes())
}

func TestNewPollResults(t *testing.T) {
	now := time.Date(2026, 1, 1, 13, 0, 0, 0, time.UTC)

	t.Run("no votes", func(t *testing.T) {
		res := NewPollResults(newTestPoll(nil, 0, 0), now)
		assert.Zero(t, res.TotalVotes)
		assert.Empty(t, res.Leaders)
		assert.Zero(t, res.Options[0].Percentage)
		assert.False(t, res.Expired)
	})

	t.Run("percentages and ties", func(t *testing.T) {
		res := NewPollResults(newTestPoll(nil, 2, 1, 2, 0), now)
		assert.Equal(t, uint64(5), res.TotalVotes)
		assert.Equal(t, []string{"a", "c"}, res.Leaders)
		assert.InDelta(t, 40.0, res.Options[0].Percentage, 0.001)
		assert.InDelta(t, 20.0, res.Options[1].Percentage, 0.001)

		var sum float64
		for _, o := range res.Options {
			sum += o.Percentage
		}
		assert.InDelta(t, 100.0, sum, 0.001)
	})

	t.Run("expired", func(t *testing.T) {
		deadline := now.Add(-time.Minute)
		res := NewPollResults(newTestPoll(&deadline, 1, 0), now)
		assert.True(t, res.Expired)
		assert.Equal(t, []string{"a"}, res.Leaders)
	})
}
