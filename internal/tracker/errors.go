package tracker

import "errors"

// Sentinel errors for lifecycle precondition violations.
var (
	ErrAlreadyActive     = errors.New("an activity is already active")
	ErrNoActiveActivity  = errors.New("no active activity")
	ErrAlreadyHeld       = errors.New("activity is already held")
	ErrNotHeld           = errors.New("activity is not held")
	ErrAmbiguousTarget   = errors.New("multiple held activities, an explicit id is required")
	ErrCannotAdjustEnded = errors.New("cannot adjust an ended activity")
	ErrValidation        = errors.New("invalid activity field")
)
