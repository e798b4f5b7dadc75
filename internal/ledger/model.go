package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a ledger event. The sign of an event's effect on the
// balance is derived from its kind; amounts are always stored non-negative.
type Kind string

const (
	KindIncome     Kind = "INCOME"
	KindExpense    Kind = "EXPENSE"
	KindDeposit    Kind = "DEPOSIT"
	KindWithdrawal Kind = "WITHDRAWAL"
)

// Credits reports whether the kind increases the balance.
func (k Kind) Credits() bool {
	return k == KindIncome || k == KindDeposit
}

// Valid reports whether the kind is one of the four supported values.
func (k Kind) Valid() bool {
	switch k {
	case KindIncome, KindExpense, KindDeposit, KindWithdrawal:
		return true
	}
	return false
}

// Event is one immutable financial movement in local currency. Events are
// created and deleted, never updated.
type Event struct {
	ID          int64           `json:"id"`
	Kind        Kind            `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	OccurredAt  time.Time       `json:"occurred_at"`
	CreatedBy   int64           `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BalanceLine is an Event annotated with the account balance immediately
// after the event is applied. The balance is always computed over the full
// chronological history, never over a filtered window.
type BalanceLine struct {
	Event
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// PeriodMode selects the granularity of a reporting window.
type PeriodMode string

const (
	PeriodMonthly PeriodMode = "MONTHLY"
	PeriodYearly  PeriodMode = "YEARLY"
)

// Period is a reporting window. It only filters and summarises; it never
// resets the running balance.
type Period struct {
	Mode  PeriodMode `json:"mode"`
	Year  int        `json:"year"`
	Month time.Month `json:"month,omitempty"`
}

const (
	minPeriodYear = 2000
	maxPeriodYear = 2100
)

// Validate checks the period against sane bounds. Month is required only in
// monthly mode.
func (p Period) Validate() error {
	if p.Mode != PeriodMonthly && p.Mode != PeriodYearly {
		return Errorf(ErrValidation, "unknown period mode %q", p.Mode)
	}
	if p.Year < minPeriodYear || p.Year > maxPeriodYear {
		return Errorf(ErrValidation, "year %d out of range", p.Year)
	}
	if p.Mode == PeriodMonthly && (p.Month < time.January || p.Month > time.December) {
		return Errorf(ErrValidation, "month %d out of range", p.Month)
	}
	return nil
}

// Contains reports whether t falls inside the window. Membership is decided
// on UTC calendar fields so that it cannot flip with the server timezone.
func (p Period) Contains(t time.Time) bool {
	u := t.UTC()
	if u.Year() != p.Year {
		return false
	}
	return p.Mode == PeriodYearly || u.Month() == p.Month
}

// Label renders the period for page titles and export headers.
func (p Period) Label() string {
	if p.Mode == PeriodYearly {
		return time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC).Format("2006")
	}
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

// Summary aggregates a period-scoped set of events.
type Summary struct {
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetProfit     decimal.Decimal `json:"net_profit"`
}

// Margin returns net profit as a percentage of income, and zero when there
// is no income in the period.
func (s Summary) Margin() decimal.Decimal {
	if s.TotalIncome.IsZero() {
		return decimal.Zero
	}
	return s.NetProfit.Div(s.TotalIncome).Mul(decimal.NewFromInt(100))
}
