package domain

import "time"

type Vote struct {
	PollID     string    `json:"pollId"`
	OptionID   string    `json:"optionId"`
	VoterToken string    `json:"voterToken"`
	CreatedAt  time.Time `json:"createdAt"`
}
