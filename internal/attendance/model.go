// Package attendance tracks daily presence: one entry per user per day with
// check-in, check-out and an optional break window.
package attendance

import "time"

// Entry is one user's attendance record for a single day. Day is a UTC date;
// the timestamps carry the precise clock times.
type Entry struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	Day        time.Time  `json:"day"`
	CheckIn    time.Time  `json:"check_in"`
	CheckOut   *time.Time `json:"check_out,omitempty"`
	BreakStart *time.Time `json:"break_start,omitempty"`
	BreakEnd   *time.Time `json:"break_end,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Worked returns the time between check-in and check-out minus any completed
// break. Zero until the user has checked out.
func (e Entry) Worked() time.Duration {
	if e.CheckOut == nil {
		return 0
	}
	d := e.CheckOut.Sub(e.CheckIn)
	if e.BreakStart != nil && e.BreakEnd != nil {
		d -= e.BreakEnd.Sub(*e.BreakStart)
	}
	if d < 0 {
		return 0
	}
	return d
}
