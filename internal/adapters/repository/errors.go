package repository

import "errors"

// Sentinel kinds for leaderboard errors.
var (
	ErrNotFound     = errors.New("roster not found")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
	ErrEmptyKey     = errors.New("roster key is empty")
)
