package roster

import "errors"

// Sentinel errors for roster building.
var (
	ErrTooFewTribes    = errors.New("roster needs at least 3 starting tribes")
	ErrUnknownStrategy = errors.New("unknown roster strategy")
)
