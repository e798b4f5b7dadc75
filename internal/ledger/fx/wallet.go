package fx

import (
	"github.com/shopspring/decimal"
)

// WalletBalance folds the wallet events into the current foreign-currency
// balance: sum of Loads minus sum of Spends over all surviving events. The
// wallet is always a global running total; it is never period-scoped.
func WalletBalance(events []Event) decimal.Decimal {
	balance := decimal.Zero
	for _, ev := range events {
		switch ev.Kind {
		case KindLoad:
			balance = balance.Add(ev.Amount)
		case KindSpend:
			balance = balance.Sub(ev.Amount)
		}
	}
	return balance
}

// Policy controls wallet validation. Overdraft is allowed by default:
// ad spend often lands before the matching top-up is recorded.
type Policy struct {
	AllowOverdraft bool
}

// DefaultPolicy allows overdraft.
func DefaultPolicy() Policy {
	return Policy{AllowOverdraft: true}
}
