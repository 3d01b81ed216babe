package session

import "errors"

// Sentinel kinds for session errors.
var (
	// ErrIllegalAction means the action is not legal from the current screen.
	// The state is left untouched.
	ErrIllegalAction = errors.New("illegal action for current screen")

	// ErrNoPendingReset means Confirm or Cancel arrived with no reset staged.
	ErrNoPendingReset = errors.New("no reset pending confirmation")
)
