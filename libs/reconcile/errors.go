package reconcile

import "errors"

var (
	// ErrMalformedInput reports numeric text that is present but not a number.
	ErrMalformedInput = errors.New("malformed input")
	ErrViewMismatch   = errors.New("source record does not belong to requested view")
	ErrUnknownView    = errors.New("unknown view")
	ErrNoSource       = errors.New("source record is missing")
)
