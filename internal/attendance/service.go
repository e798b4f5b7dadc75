package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/atrium-hq/atrium/internal/ledger"
)

// Clock abstracts time.Now so tests can pin the working day.
type Clock func() time.Time

// Service implements the attendance workflow: at most one entry per user per
// UTC day, check-in before check-out, at most one break.
type Service struct {
	repo Repository
	now  Clock
}

// NewService constructs a Service. A nil clock falls back to time.Now.
func NewService(repo Repository, now Clock) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

func (s *Service) today() (time.Time, time.Time) {
	now := s.now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return now, day
}

// CheckIn opens today's entry.
func (s *Service) CheckIn(ctx context.Context, userID int64) (*Entry, error) {
	now, day := s.today()
	existing, err := s.repo.FindByDay(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("find entry: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyCheckedIn
	}

	entry := Entry{UserID: userID, Day: day, CheckIn: now}
	id, err := s.repo.Create(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	entry.ID = id
	return &entry, nil
}

// CheckOut closes today's entry. An unfinished break is closed at the same
// instant so the worked time stays consistent.
func (s *Service) CheckOut(ctx context.Context, userID int64) (*Entry, error) {
	now, day := s.today()
	entry, err := s.repo.FindByDay(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("find entry: %w", err)
	}
	if entry == nil {
		return nil, ErrNotCheckedIn
	}
	if entry.CheckOut != nil {
		return nil, ErrAlreadyCheckedOut
	}
	if entry.BreakStart != nil && entry.BreakEnd == nil {
		entry.BreakEnd = &now
	}
	entry.CheckOut = &now
	if err := s.repo.Update(ctx, *entry); err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}
	return entry, nil
}

// StartBreak opens today's break window.
func (s *Service) StartBreak(ctx context.Context, userID int64) (*Entry, error) {
	now, day := s.today()
	entry, err := s.repo.FindByDay(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("find entry: %w", err)
	}
	if entry == nil {
		return nil, ErrNotCheckedIn
	}
	if entry.CheckOut != nil {
		return nil, ErrAlreadyCheckedOut
	}
	if entry.BreakStart != nil {
		return nil, ErrBreakOpen
	}
	entry.BreakStart = &now
	if err := s.repo.Update(ctx, *entry); err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}
	return entry, nil
}

// EndBreak closes today's break window.
func (s *Service) EndBreak(ctx context.Context, userID int64) (*Entry, error) {
	now, day := s.today()
	entry, err := s.repo.FindByDay(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("find entry: %w", err)
	}
	if entry == nil {
		return nil, ErrNotCheckedIn
	}
	if entry.BreakStart == nil || entry.BreakEnd != nil {
		return nil, ErrNoBreakOpen
	}
	entry.BreakEnd = &now
	if err := s.repo.Update(ctx, *entry); err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}
	return entry, nil
}

// Month lists a user's entries for the given monthly period, oldest first.
func (s *Service) Month(ctx context.Context, userID int64, p ledger.Period) ([]Entry, error) {
	if p.Mode != ledger.PeriodMonthly {
		return nil, ledger.Errorf(ledger.ErrValidation, "attendance listing is monthly")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.repo.ListMonth(ctx, userID, p)
}
