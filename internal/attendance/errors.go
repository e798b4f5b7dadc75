package attendance

import "errors"

var (
	ErrAlreadyCheckedIn  = errors.New("attendance: already checked in today")
	ErrNotCheckedIn      = errors.New("attendance: not checked in today")
	ErrAlreadyCheckedOut = errors.New("attendance: already checked out today")
	ErrBreakOpen         = errors.New("attendance: a break is already running")
	ErrNoBreakOpen       = errors.New("attendance: no break is running")
)
