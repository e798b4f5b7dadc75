package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atrium-hq/atrium/internal/ledger"
)

type memRepo struct {
	entries map[int64]*Entry
	nextID  int64
}

func newMemRepo() *memRepo {
	return &memRepo{entries: make(map[int64]*Entry), nextID: 1}
}

func (m *memRepo) FindByDay(_ context.Context, userID int64, day time.Time) (*Entry, error) {
	for _, e := range m.entries {
		if e.UserID == userID && e.Day.Equal(day) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memRepo) Create(_ context.Context, e Entry) (int64, error) {
	e.ID = m.nextID
	m.nextID++
	m.entries[e.ID] = &e
	return e.ID, nil
}

func (m *memRepo) Update(_ context.Context, e Entry) error {
	m.entries[e.ID] = &e
	return nil
}

func (m *memRepo) ListMonth(_ context.Context, userID int64, p ledger.Period) ([]Entry, error) {
	var out []Entry
	for _, e := range m.entries {
		if e.UserID == userID && p.Contains(e.Day) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestCheckInThenOut(t *testing.T) {
	repo := newMemRepo()
	at := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	svc := NewService(repo, fixedClock(at))

	entry, err := svc.CheckIn(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, at, entry.CheckIn)

	_, err = svc.CheckIn(context.Background(), 1)
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)

	svc.now = fixedClock(at.Add(8 * time.Hour))
	entry, err = svc.CheckOut(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 8*time.Hour, entry.Worked())

	_, err = svc.CheckOut(context.Background(), 1)
	require.ErrorIs(t, err, ErrAlreadyCheckedOut)
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	_, err := svc.CheckOut(context.Background(), 1)
	require.ErrorIs(t, err, ErrNotCheckedIn)
}

func TestBreakReducesWorkedTime(t *testing.T) {
	repo := newMemRepo()
	at := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	svc := NewService(repo, fixedClock(at))

	_, err := svc.CheckIn(context.Background(), 1)
	require.NoError(t, err)

	svc.now = fixedClock(at.Add(3 * time.Hour))
	_, err = svc.StartBreak(context.Background(), 1)
	require.NoError(t, err)

	_, err = svc.StartBreak(context.Background(), 1)
	require.ErrorIs(t, err, ErrBreakOpen)

	svc.now = fixedClock(at.Add(4 * time.Hour))
	_, err = svc.EndBreak(context.Background(), 1)
	require.NoError(t, err)

	svc.now = fixedClock(at.Add(9 * time.Hour))
	entry, err := svc.CheckOut(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 8*time.Hour, entry.Worked())
}

func TestCheckOutClosesOpenBreak(t *testing.T) {
	repo := newMemRepo()
	at := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	svc := NewService(repo, fixedClock(at))

	_, err := svc.CheckIn(context.Background(), 1)
	require.NoError(t, err)

	svc.now = fixedClock(at.Add(3 * time.Hour))
	_, err = svc.StartBreak(context.Background(), 1)
	require.NoError(t, err)

	svc.now = fixedClock(at.Add(5 * time.Hour))
	entry, err := svc.CheckOut(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, entry.BreakEnd)
	require.Equal(t, 3*time.Hour, entry.Worked())
}

func TestMonthRejectsYearlyPeriod(t *testing.T) {
	svc := NewService(newMemRepo(), nil)
	_, err := svc.Month(context.Background(), 1, ledger.Period{Mode: ledger.PeriodYearly, Year: 2024})
	require.ErrorIs(t, err, ledger.ErrValidation)
}
