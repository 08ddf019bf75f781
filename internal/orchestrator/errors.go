package orchestrator

import "errors"

// Validation errors. Surfaced immediately; no state change has occurred
// when any of these are returned.
var (
	ErrEmptyUserID      = errors.New("orchestrator: user id must not be empty")
	ErrInvalidRating    = errors.New("orchestrator: rating must be in [0, 1]")
	ErrEmptyDescription = errors.New("orchestrator: description must not be empty")
)
