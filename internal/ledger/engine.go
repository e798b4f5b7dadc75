package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ComputeRunningBalances annotates every event with the balance after it is
// applied. The input may arrive in any order; events are stable-sorted by
// OccurredAt ascending with ties broken by ID so the fold is deterministic.
// The fold starts from opening (zero when the history is complete since
// account inception) and fails on any negative amount rather than skipping
// the event, since a skipped event would corrupt every later balance.
//
// The returned slice is in chronological order. Callers that present events
// newest-first must re-sort without touching RunningBalance.
func ComputeRunningBalances(events []Event, opening decimal.Decimal) ([]BalanceLine, error) {
	if len(events) == 0 {
		return []BalanceLine{}, nil
	}

	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].OccurredAt.Equal(sorted[j].OccurredAt) {
			return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	lines := make([]BalanceLine, 0, len(sorted))
	balance := opening
	for _, ev := range sorted {
		if !ev.Kind.Valid() {
			return nil, Errorf(ErrValidation, "event %d has unknown kind %q", ev.ID, ev.Kind)
		}
		if ev.Amount.IsNegative() {
			return nil, Errorf(ErrValidation, "event %d has negative amount %s", ev.ID, ev.Amount)
		}
		if ev.Kind.Credits() {
			balance = balance.Add(ev.Amount)
		} else {
			balance = balance.Sub(ev.Amount)
		}
		lines = append(lines, BalanceLine{Event: ev, RunningBalance: balance})
	}
	return lines, nil
}

// FilterByPeriod retains the lines whose OccurredAt falls inside the period.
// Input order is preserved and RunningBalance values are carried through
// untouched, so a March statement still shows the true balance trajectory.
func FilterByPeriod(lines []BalanceLine, p Period) []BalanceLine {
	out := make([]BalanceLine, 0, len(lines))
	for _, line := range lines {
		if p.Contains(line.OccurredAt) {
			out = append(out, line)
		}
	}
	return out
}

// Summarize folds a period-scoped set of lines into totals. Unlike the
// running balance, the summary is period-local: callers pass the filtered
// set, not the full history.
func Summarize(lines []BalanceLine) Summary {
	var s Summary
	s.TotalIncome = decimal.Zero
	s.TotalExpenses = decimal.Zero
	for _, line := range lines {
		if line.Kind.Credits() {
			s.TotalIncome = s.TotalIncome.Add(line.Amount)
		} else {
			s.TotalExpenses = s.TotalExpenses.Add(line.Amount)
		}
	}
	s.NetProfit = s.TotalIncome.Sub(s.TotalExpenses)
	return s
}
