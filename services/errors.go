package services

import "errors"

// Business-rule denials. These are expected outcomes, not faults — handlers
// surface them as 4xx responses and never as internal errors.
var (
	// ErrInsufficientTokens is returned by Unlock when the user cannot
	// afford the configured unlock cost. No state is mutated.
	ErrInsufficientTokens = errors.New("insufficient tokens")

	// ErrSeasonIsCurrent guards the current season against deletion and
	// against being disabled while it holds the exclusive flag.
	ErrSeasonIsCurrent = errors.New("season is current")
)
