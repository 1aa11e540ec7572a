package server

import "errors"

var (
	ErrPollNotFound     = errors.New("poll not found")
	ErrOptionNotFound   = errors.New("option not found")
	ErrPollExpired      = errors.New("poll expired")
	ErrDuplicateVote    = errors.New("already voted")
	ErrAlreadyAnchored  = errors.New("poll already anchored onchain")
	ErrQuestionNotFound = errors.New("no daily question")
	ErrNotEnoughVotes   = errors.New("not enough votes for breakdown")
	ErrGraphUnavailable = errors.New("follow graph unavailable")
)
