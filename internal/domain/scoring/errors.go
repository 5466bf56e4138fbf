package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingKey is returned when a required scoring key is absent.
var ErrMissingKey = errors.New("missing required scoring key")

// MissingKeyError lists every required key absent from a scoring source.
type MissingKeyError struct {
	Keys []string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingKey, strings.Join(e.Keys, ", "))
}

// Unwrap lets errors.Is match ErrMissingKey.
func (e *MissingKeyError) Unwrap() error {
	return ErrMissingKey
}
