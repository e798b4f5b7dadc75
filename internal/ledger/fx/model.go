// Package fx maintains the foreign-currency ad-spend wallet: a sub-ledger
// funded by Load events and drawn down by Spend events, reconciled against
// the local-currency ledger through a per-event exchange rate.
package fx

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a wallet event.
type Kind string

const (
	KindLoad  Kind = "LOAD"
	KindSpend Kind = "SPEND"
)

// Valid reports whether the kind is supported.
func (k Kind) Valid() bool {
	return k == KindLoad || k == KindSpend
}

// Sentinel values applied by the HTTP layer when a Load carries no
// counterparty details.
const (
	ManualLoadCompany  = "Manual Load"
	ManualLoadPlatform = "Manual Entry"
)

// Event is one wallet movement. LocalEquivalent is fixed at write time from
// the rate in force when the event happened; it is never recomputed from a
// later rate, so historical events keep their value when today's rate moves.
type Event struct {
	ID              int64           `json:"id"`
	Kind            Kind            `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	Rate            decimal.Decimal `json:"rate"`
	LocalEquivalent decimal.Decimal `json:"local_equivalent"`
	CompanyName     string          `json:"company_name"`
	Platform        string          `json:"platform"`
	OccurredAt      time.Time       `json:"occurred_at"`
	CreatedBy       int64           `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
}
