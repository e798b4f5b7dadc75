package fx

import "errors"

var (
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("fx: validation failed")
	// ErrNotFound indicates the referenced wallet event does not exist.
	ErrNotFound = errors.New("fx: event not found")
	// ErrInsufficientBalance indicates a Spend would overdraw the wallet
	// while the overdraft policy forbids it.
	ErrInsufficientBalance = errors.New("fx: insufficient wallet balance")
)
