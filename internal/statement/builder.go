// Package statement turns a period-scoped, balance-annotated slice of ledger
// events into exportable documents. It composes data the ledger engine
// already produced; it never filters, aggregates or recomputes balances.
package statement

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/atrium-hq/atrium/internal/ledger"
)

// ErrEmptyPeriod indicates a statement was requested for a period with no
// events. An empty export is a user-facing validation failure, never a
// silently empty document.
var ErrEmptyPeriod = errors.New("statement: no events in period")

// Statement is one exportable financial statement.
type Statement struct {
	ID            string
	AccountHolder string
	Period        ledger.Period
	GeneratedAt   time.Time
	// Lines are presented newest first; their RunningBalance values are the
	// ones the chronological fold produced.
	Lines   []ledger.BalanceLine
	Summary ledger.Summary
}

// Build assembles a statement from already-filtered, already-annotated
// lines and their period summary.
func Build(lines []ledger.BalanceLine, summary ledger.Summary, period ledger.Period, accountHolder string) (Statement, error) {
	if err := period.Validate(); err != nil {
		return Statement{}, err
	}
	if len(lines) == 0 {
		return Statement{}, fmt.Errorf("%w: %s", ErrEmptyPeriod, period.Label())
	}

	ordered := make([]ledger.BalanceLine, len(lines))
	copy(ordered, lines)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].OccurredAt.Equal(ordered[j].OccurredAt) {
			return ordered[i].OccurredAt.After(ordered[j].OccurredAt)
		}
		return ordered[i].ID > ordered[j].ID
	})

	return Statement{
		ID:            uuid.NewString(),
		AccountHolder: accountHolder,
		Period:        period,
		GeneratedAt:   time.Now().UTC(),
		Lines:         ordered,
		Summary:       summary,
	}, nil
}
