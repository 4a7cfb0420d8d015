package domain

import "errors"

var (
	ErrValidation     = errors.New("invalid poll")
	ErrPollNotFound   = errors.New("poll not found")
	ErrOptionNotFound = errors.New("option not found")
	ErrInvalidOption  = errors.New("invalid option for this poll")
	ErrExpired        = errors.New("this poll has expired")
	ErrAlreadyVoted   = errors.New("voter has already voted on this poll")
)
