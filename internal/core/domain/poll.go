package domain

import "time"

const (
	MinOptions = 2
	MaxOptions = 10

	AnonymousAuthor = "anon"
)

type Poll struct {
	ID        string       `json:"id"`
	Question  string       `json:"question"`
	Options   []PollOption `json:"options"`
	CreatedAt time.Time    `json:"createdAt"`
	ExpiresAt *time.Time   `json:"expiresAt"`
	AuthorID  string       `json:"authorId"`
}

type PollOption struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes uint64 `json:"votes"`
}

// IsExpired reports whether the poll stopped accepting votes at now.
// A poll without a deadline never expires.
func (p *Poll) IsExpired(now time.Time) bool {
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

func (p *Poll) Option(id string) (*PollOption, bool) {
	for i := range p.Options {
		if p.Options[i].ID == id {
			return &p.Options[i], true
		}
	}
	return nil, false
}

func (p *Poll) TotalVotes() uint64 {
	var total uint64
	for _, opt := range p.Options {
		total += opt.Votes
	}
	return total
}

// Clone returns a deep copy so callers never share option slices with the store.
func (p *Poll) Clone() *Poll {
	c := *p
	c.Options = append([]PollOption(nil), p.Options...)
	if p.ExpiresAt != nil {
		t := *p.ExpiresAt
		c.ExpiresAt = &t
	}
	return &c
}
