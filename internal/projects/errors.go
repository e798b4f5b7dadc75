package projects

import "errors"

var (
	ErrValidation = errors.New("projects: validation failed")
	ErrNotFound   = errors.New("projects: not found")
)
