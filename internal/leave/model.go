// Package leave manages leave requests and their approval workflow.
package leave

import "time"

// Type classifies a leave request.
type Type string

const (
	TypeAnnual Type = "ANNUAL"
	TypeSick   Type = "SICK"
	TypeUnpaid Type = "UNPAID"
)

// Valid reports whether the type is supported.
func (t Type) Valid() bool {
	switch t {
	case TypeAnnual, TypeSick, TypeUnpaid:
		return true
	}
	return false
}

// Status tracks the approval state. Requests start pending and are settled
// exactly once.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Request is one leave request. StartDate and EndDate are inclusive UTC
// dates.
type Request struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	UserEmail  string     `json:"user_email"`
	Type       Type       `json:"type"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    time.Time  `json:"end_date"`
	Reason     string     `json:"reason"`
	Status     Status     `json:"status"`
	DecidedBy  *int64     `json:"decided_by,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Days returns the inclusive length of the request in days.
func (r Request) Days() int {
	return int(r.EndDate.Sub(r.StartDate).Hours()/24) + 1
}
