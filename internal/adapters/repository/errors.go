package repository

import "errors"

// Sentinel kinds for ledger store errors.
var (
	ErrNotFound     = errors.New("person not found")
	ErrInvalidLimit = errors.New("invalid history limit")
	ErrClosed       = errors.New("store is closed")
)
