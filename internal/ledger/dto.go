package ledger

import "time"

// CreateEventRequest carries a new ledger entry from the form layer.
// Amount is kept as the raw form string so the service can parse it into an
// exact decimal instead of round-tripping through float64.
type CreateEventRequest struct {
	Kind        string    `json:"kind" validate:"required,oneof=INCOME EXPENSE DEPOSIT WITHDRAWAL"`
	Amount      string    `json:"amount" validate:"required"`
	Category    string    `json:"category" validate:"max=100"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	OccurredAt  time.Time `json:"occurred_at" validate:"required"`
}

// Overview is the finance dashboard payload for one reporting period.
type Overview struct {
	Period         Period        `json:"period"`
	Lines          []BalanceLine `json:"lines"`
	Summary        Summary       `json:"summary"`
	CurrentBalance string        `json:"current_balance"`
}
