package leave

import "errors"

var (
	ErrValidation     = errors.New("leave: validation failed")
	ErrNotFound       = errors.New("leave: request not found")
	ErrAlreadySettled = errors.New("leave: request already settled")
)
