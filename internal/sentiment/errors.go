package sentiment

import "errors"

var (
	// ErrRemoteDisabled means no remote provider is configured.
	ErrRemoteDisabled = errors.New("remote sentiment provider disabled")
	// ErrInvalidResponse means the remote pairs could not be interpreted.
	ErrInvalidResponse = errors.New("sentiment provider returned invalid response")
)
