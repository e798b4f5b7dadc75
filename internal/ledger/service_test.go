package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	events []Event
	nextID int64
	listed int
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]Event, error) {
	f.listed++
	return append([]Event(nil), f.events...), nil
}

func (f *fakeRepo) Create(ctx context.Context, ev Event) (Event, error) {
	f.nextID++
	ev.ID = f.nextID
	ev.CreatedAt = time.Now().UTC()
	f.events = append(f.events, ev)
	return ev, nil
}

func (f *fakeRepo) DeleteByID(ctx context.Context, id int64) error {
	for i, ev := range f.events {
		if ev.ID == id {
			f.events = append(f.events[:i], f.events[i+1:]...)
			return nil
		}
	}
	return Errorf(ErrNotFound, "id %d", id)
}

func newTestService(repo Repository) *Service {
	return NewService(repo, nil, nil, ServiceConfig{OpeningBalance: decimal.Zero})
}

func TestServiceOverview(t *testing.T) {
	repo := &fakeRepo{events: []Event{
		{ID: 1, Kind: KindIncome, Amount: dec("1000"), OccurredAt: day(2024, time.January, 5)},
		{ID: 2, Kind: KindExpense, Amount: dec("300"), OccurredAt: day(2024, time.January, 10)},
		{ID: 3, Kind: KindDeposit, Amount: dec("200"), OccurredAt: day(2024, time.February, 1)},
	}, nextID: 3}

	svc := newTestService(repo)
	ov, err := svc.Overview(context.Background(), Period{Mode: PeriodMonthly, Year: 2024, Month: time.January})
	require.NoError(t, err)

	require.Len(t, ov.Lines, 2)
	// Presentation order is newest first; balances keep their chronological values.
	require.Equal(t, int64(2), ov.Lines[0].ID)
	require.True(t, ov.Lines[0].RunningBalance.Equal(dec("700")))
	require.True(t, ov.Lines[1].RunningBalance.Equal(dec("1000")))
	require.True(t, ov.Summary.NetProfit.Equal(dec("700")))
	// Current balance reflects the full history, not the filtered window.
	require.Equal(t, "900", ov.CurrentBalance)
}

func TestServiceOverviewRejectsInvalidPeriod(t *testing.T) {
	svc := newTestService(&fakeRepo{})
	_, err := svc.Overview(context.Background(), Period{Mode: PeriodMonthly, Year: 2024})
	require.ErrorIs(t, err, ErrValidation)
}

func TestServiceRecordParsesExactAmount(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	ev, err := svc.Record(context.Background(), CreateEventRequest{
		Kind:       "INCOME",
		Amount:     "1234.56",
		Title:      "Retainer invoice",
		OccurredAt: day(2024, time.March, 4),
	}, 7)
	require.NoError(t, err)
	require.True(t, ev.Amount.Equal(dec("1234.56")))
	require.Equal(t, int64(7), ev.CreatedBy)
}

func TestServiceRecordValidation(t *testing.T) {
	svc := newTestService(&fakeRepo{})
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateEventRequest
	}{
		{"missing title", CreateEventRequest{Kind: "INCOME", Amount: "10", OccurredAt: day(2024, time.March, 4)}},
		{"bad kind", CreateEventRequest{Kind: "REFUND", Amount: "10", Title: "x", OccurredAt: day(2024, time.March, 4)}},
		{"non numeric amount", CreateEventRequest{Kind: "INCOME", Amount: "ten", Title: "x", OccurredAt: day(2024, time.March, 4)}},
		{"negative amount", CreateEventRequest{Kind: "INCOME", Amount: "-10", Title: "x", OccurredAt: day(2024, time.March, 4)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Record(ctx, tc.req, 7)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestServiceDeleteRecomputesBalances(t *testing.T) {
	repo := &fakeRepo{events: []Event{
		{ID: 1, Kind: KindIncome, Amount: dec("100"), OccurredAt: day(2024, time.July, 1)},
		{ID: 2, Kind: KindExpense, Amount: dec("40"), OccurredAt: day(2024, time.July, 2)},
	}, nextID: 2}
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, 1, 7))

	lines, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.True(t, lines[0].RunningBalance.Equal(dec("-40")),
		"balance must be recomputed over surviving events, got %s", lines[0].RunningBalance)
}

func TestServiceDeleteMissingEvent(t *testing.T) {
	svc := newTestService(&fakeRepo{})
	err := svc.Delete(context.Background(), 99, 7)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestServiceCurrentBalanceEmptyHistory(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil, nil, ServiceConfig{OpeningBalance: dec("250")})
	balance, err := svc.CurrentBalance(context.Background())
	require.NoError(t, err)
	require.True(t, balance.Equal(dec("250")))
}

type failingRepo struct{ fakeRepo }

func (f *failingRepo) ListAll(ctx context.Context) ([]Event, error) {
	return nil, errors.New("boom")
}

func TestServiceOverviewPropagatesStoreErrors(t *testing.T) {
	svc := newTestService(&failingRepo{})
	_, err := svc.Overview(context.Background(), Period{Mode: PeriodYearly, Year: 2024})
	require.Error(t, err)
}
