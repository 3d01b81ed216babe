package service

import "errors"

// Sentinel kinds for ledger service errors. Callers branch with errors.Is.
//
// Conflict deliberately has no sentinel: concurrent appends are serialized
// inside the store's transactions and never surface to callers.
var (
	// ErrNotFound means the referenced person does not exist. This is a
	// configuration error, not something a user can correct.
	ErrNotFound = errors.New("person not found")

	// ErrInvalidInput means the delta or story was malformed. The caller must
	// fix the input before retrying; the store was never contacted.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable means the store could not be reached or timed out.
	// Transient; the user may retry manually.
	ErrUnavailable = errors.New("store unavailable")
)
