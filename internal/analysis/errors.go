package analysis

import "errors"

// Input errors. Each maps to a distinct caller-facing message and is never retried.
var (
	ErrEmptyFeedback = errors.New("feedback text is required")
	ErrNoData        = errors.New("dataset has no rows")
	ErrNoColumn      = errors.New("could not detect feedback column")
	ErrNoFeedbacks   = errors.New("no non-empty feedback found")
)
