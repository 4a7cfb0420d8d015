package domain

import "time"

type PollResults struct {
	PollID     string              `json:"pollId"`
	Question   string              `json:"question"`
	TotalVotes uint64              `json:"totalVotes"`
	Expired    bool                `json:"expired"`
	ExpiresAt  *time.Time          `json:"expiresAt"`
	Leaders    []string            `json:"leaders"`
	Options    []PollOptionResults `json:"options"`
}

type PollOptionResults struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	Votes      uint64  `json:"votes"`
	Percentage float64 `json:"percentage"`
}

// NewPollResults summarizes p as seen at now. Leaders lists every option tied
// for the highest count, in display order, and is empty while nobody voted.
func NewPollResults(p *Poll, now time.Time) *PollResults {
	total := p.TotalVotes()
	res := &PollResults{
		PollID:     p.ID,
		Question:   p.Question,
		TotalVotes: total,
		Expired:    p.IsExpired(now),
		ExpiresAt:  p.ExpiresAt,
		Leaders:    []string{},
		Options:    make([]PollOptionResults, 0, len(p.Options)),
	}

	var best uint64
	for _, opt := range p.Options {
		percentage := 0.0
		if total > 0 {
			percentage = (float64(opt.Votes) / float64(total)) * 100
		}
		res.Options = append(res.Options, PollOptionResults{
			ID:         opt.ID,
			Text:       opt.Text,
			Votes:      opt.Votes,
			Percentage: percentage,
		})

		switch {
		case opt.Votes == 0:
		case opt.Votes > best:
			best = opt.Votes
			res.Leaders = []string{opt.ID}
		case opt.Votes == best:
			res.Leaders = append(res.Leaders, opt.ID)
		}
	}
	return res
}
