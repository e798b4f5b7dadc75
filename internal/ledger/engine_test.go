package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestComputeRunningBalancesScenario(t *testing.T) {
	events := []Event{
		{ID: 1, Kind: KindIncome, Amount: dec("1000"), OccurredAt: day(2024, time.January, 5)},
		{ID: 2, Kind: KindExpense, Amount: dec("300"), OccurredAt: day(2024, time.January, 10)},
		{ID: 3, Kind: KindDeposit, Amount: dec("200"), OccurredAt: day(2024, time.February, 1)},
	}

	lines, err := ComputeRunningBalances(events, decimal.Zero)
	if err != nil {
		t.Fatalf("ComputeRunningBalances() error = %v", err)
	}
	want := []string{"1000", "700", "900"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines got %d", len(want), len(lines))
	}
	for i, w := range want {
		if !lines[i].RunningBalance.Equal(dec(w)) {
			t.Fatalf("line %d: expected balance %s got %s", i, w, lines[i].RunningBalance)
		}
	}

	jan := Period{Mode: PeriodMonthly, Year: 2024, Month: time.January}
	filtered := FilterByPeriod(lines, jan)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 january lines got %d", len(filtered))
	}
	if !filtered[0].RunningBalance.Equal(dec("1000")) || !filtered[1].RunningBalance.Equal(dec("700")) {
		t.Fatalf("period filter must not touch running balances, got %s and %s",
			filtered[0].RunningBalance, filtered[1].RunningBalance)
	}

	sum := Summarize(filtered)
	if !sum.TotalIncome.Equal(dec("1000")) {
		t.Fatalf("expected income 1000 got %s", sum.TotalIncome)
	}
	if !sum.TotalExpenses.Equal(dec("300")) {
		t.Fatalf("expected expenses 300 got %s", sum.TotalExpenses)
	}
	if !sum.NetProfit.Equal(dec("700")) {
		t.Fatalf("expected net profit 700 got %s", sum.NetProfit)
	}
}

func TestComputeRunningBalancesEmptyInput(t *testing.T) {
	lines, err := ComputeRunningBalances(nil, decimal.Zero)
	if err != nil {
		t.Fatalf("ComputeRunningBalances() error = %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected empty output got %d lines", len(lines))
	}
}

func TestComputeRunningBalancesFinalTotalMatchesSummary(t *testing.T) {
	events := []Event{
		{ID: 1, Kind: KindIncome, Amount: dec("150.25"), OccurredAt: day(2023, time.March, 1)},
		{ID: 2, Kind: KindWithdrawal, Amount: dec("50"), OccurredAt: day(2023, time.March, 9)},
		{ID: 3, Kind: KindDeposit, Amount: dec("10.75"), OccurredAt: day(2023, time.April, 2)},
		{ID: 4, Kind: KindExpense, Amount: dec("99.99"), OccurredAt: day(2023, time.June, 30)},
	}
	lines, err := ComputeRunningBalances(events, decimal.Zero)
	if err != nil {
		t.Fatalf("ComputeRunningBalances() error = %v", err)
	}
	sum := Summarize(lines)
	last := lines[len(lines)-1].RunningBalance
	if !last.Equal(sum.NetProfit) {
		t.Fatalf("final balance %s != income-expenses %s", last, sum.NetProfit)
	}
}

func TestComputeRunningBalancesOrderInvariance(t *testing.T) {
	events := []Event{
		{ID: 1, Kind: KindIncome, Amount: dec("500"), OccurredAt: day(2024, time.May, 1)},
		{ID: 2, Kind: KindExpense, Amount: dec("120"), OccurredAt: day(2024, time.May, 3)},
		{ID: 3, Kind: KindDeposit, Amount: dec("80"), OccurredAt: day(2024, time.May, 7)},
		{ID: 4, Kind: KindWithdrawal, Amount: dec("30"), OccurredAt: day(2024, time.May, 11)},
		{ID: 5, Kind: KindExpense, Amount: dec("45.50"), OccurredAt: day(2024, time.May, 11)},
	}
	baseline, err := ComputeRunningBalances(events, decimal.Zero)
	if err != nil {
		t.Fatalf("ComputeRunningBalances() error = %v", err)
	}
	final := baseline[len(baseline)-1].RunningBalance

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := make([]Event, len(events))
		copy(shuffled, events)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		lines, err := ComputeRunningBalances(shuffled, decimal.Zero)
		if err != nil {
			t.Fatalf("shuffle %d: error = %v", i, err)
		}
		if !lines[len(lines)-1].RunningBalance.Equal(final) {
			t.Fatalf("shuffle %d: final balance %s, want %s", i, lines[len(lines)-1].RunningBalance, final)
		}
		// Same-timestamp ties resolve by ID, so the whole trajectory is
		// deterministic, not just the final total.
		for j := range lines {
			if lines[j].ID != baseline[j].ID {
				t.Fatalf("shuffle %d: position %d has event %d, want %d", i, j, lines[j].ID, baseline[j].ID)
			}
		}
	}
}

func TestComputeRunningBalancesOpeningBalance(t *testing.T) {
	events := []Event{
		{ID: 1, Kind: KindExpense, Amount: dec("40"), OccurredAt: day(2024, time.January, 2)},
	}
	lines, err := ComputeRunningBalances(events, dec("100"))
	if err != nil {
		t.Fatalf("ComputeRunningBalances() error = %v", err)
	}
	if !lines[0].RunningBalance.Equal(dec("60")) {
		t.Fatalf("expected balance 60 got %s", lines[0].RunningBalance)
	}
}

func TestComputeRunningBalancesRejectsNegativeAmount(t *testing.T) {
	events := []Event{
		{ID: 1, Kind: KindIncome, Amount: dec("-5"), OccurredAt: day(2024, time.January, 2)},
	}
	if _, err := ComputeRunningBalances(events, decimal.Zero); err == nil {
		t.Fatal("expected validation error for negative amount")
	}
}

func TestComputeRunningBalancesRejectsUnknownKind(t *testing.T) {
	events := []Event{
		{ID: 1, Kind: Kind("REFUND"), Amount: dec("5"), OccurredAt: day(2024, time.January, 2)},
	}
	if _, err := ComputeRunningBalances(events, decimal.Zero); err == nil {
		t.Fatal("expected validation error for unknown kind")
	}
}

func TestDeletionRecomputesFromScratch(t *testing.T) {
	a := Event{ID: 1, Kind: KindIncome, Amount: dec("100"), OccurredAt: day(2024, time.July, 1)}
	b := Event{ID: 2, Kind: KindExpense, Amount: dec("40"), OccurredAt: day(2024, time.July, 2)}

	lines, err := ComputeRunningBalances([]Event{a, b}, decimal.Zero)
	if err != nil {
		t.Fatalf("ComputeRunningBalances() error = %v", err)
	}
	if !lines[0].RunningBalance.Equal(dec("100")) || !lines[1].RunningBalance.Equal(dec("60")) {
		t.Fatalf("expected [100, 60] got [%s, %s]", lines[0].RunningBalance, lines[1].RunningBalance)
	}

	// After deleting A nothing of its contribution may survive.
	lines, err = ComputeRunningBalances([]Event{b}, decimal.Zero)
	if err != nil {
		t.Fatalf("ComputeRunningBalances() error = %v", err)
	}
	if !lines[0].RunningBalance.Equal(dec("-40")) {
		t.Fatalf("expected -40 after deletion got %s", lines[0].RunningBalance)
	}
}

func TestFilterByPeriodYearlyIsUnionOfMonths(t *testing.T) {
	var events []Event
	id := int64(1)
	for _, ts := range []time.Time{
		day(2023, time.December, 31),
		day(2024, time.January, 1),
		day(2024, time.January, 15),
		day(2024, time.March, 3),
		day(2024, time.June, 30),
		day(2024, time.December, 31),
		day(2025, time.January, 1),
	} {
		events = append(events, Event{ID: id, Kind: KindIncome, Amount: dec("10"), OccurredAt: ts})
		id++
	}
	lines, err := ComputeRunningBalances(events, decimal.Zero)
	if err != nil {
		t.Fatalf("ComputeRunningBalances() error = %v", err)
	}

	yearly := FilterByPeriod(lines, Period{Mode: PeriodYearly, Year: 2024})

	seen := map[int64]int{}
	var monthly []BalanceLine
	for m := time.January; m <= time.December; m++ {
		part := FilterByPeriod(lines, Period{Mode: PeriodMonthly, Year: 2024, Month: m})
		for _, line := range part {
			seen[line.ID]++
		}
		monthly = append(monthly, part...)
	}

	if len(monthly) != len(yearly) {
		t.Fatalf("union of months has %d lines, yearly has %d", len(monthly), len(yearly))
	}
	for _, line := range yearly {
		if seen[line.ID] != 1 {
			t.Fatalf("event %d appeared %d times across months", line.ID, seen[line.ID])
		}
	}
}

func TestFilterByPeriodUsesUTCFields(t *testing.T) {
	// 03:00 on Feb 1 in UTC+7 is still Jan 31 20:00 in UTC. Membership must
	// follow the UTC fields.
	loc := time.FixedZone("UTC+7", 7*3600)
	late := time.Date(2024, time.February, 1, 3, 0, 0, 0, loc) // Jan 31 20:00 UTC

	lines, err := ComputeRunningBalances([]Event{
		{ID: 1, Kind: KindIncome, Amount: dec("10"), OccurredAt: late},
	}, decimal.Zero)
	if err != nil {
		t.Fatalf("ComputeRunningBalances() error = %v", err)
	}

	jan := FilterByPeriod(lines, Period{Mode: PeriodMonthly, Year: 2024, Month: time.January})
	feb := FilterByPeriod(lines, Period{Mode: PeriodMonthly, Year: 2024, Month: time.February})
	if len(jan) != 1 || len(feb) != 0 {
		t.Fatalf("expected event in UTC january, got jan=%d feb=%d", len(jan), len(feb))
	}
}

func TestSummarizeEmptyPeriodHasZeroMargin(t *testing.T) {
	sum := Summarize(nil)
	if !sum.NetProfit.IsZero() {
		t.Fatalf("expected zero net profit got %s", sum.NetProfit)
	}
	if !sum.Margin().IsZero() {
		t.Fatalf("expected zero margin got %s", sum.Margin())
	}
}

func TestPeriodValidate(t *testing.T) {
	cases := []struct {
		name    string
		period  Period
		wantErr bool
	}{
		{"monthly ok", Period{Mode: PeriodMonthly, Year: 2024, Month: time.March}, false},
		{"yearly ok", Period{Mode: PeriodYearly, Year: 2024}, false},
		{"bad mode", Period{Mode: PeriodMode("WEEKLY"), Year: 2024}, true},
		{"year too small", Period{Mode: PeriodYearly, Year: 1899}, true},
		{"year too large", Period{Mode: PeriodYearly, Year: 3000}, true},
		{"monthly missing month", Period{Mode: PeriodMonthly, Year: 2024}, true},
		{"month out of range", Period{Mode: PeriodMonthly, Year: 2024, Month: time.Month(13)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.period.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
