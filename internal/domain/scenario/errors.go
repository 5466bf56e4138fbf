package scenario

import "errors"

// Sentinel errors for scenario generation.
var (
	ErrTooFewTribes    = errors.New("scenario: at least 3 starting tribes required")
	ErrInvalidTemplate = errors.New("scenario: invalid season template")
)
