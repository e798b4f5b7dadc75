package fx

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// AuditRecorder is the subset of shared.AuditLogger the service needs.
type AuditRecorder interface {
	Record(ctx context.Context, actorID int64, action, entityID string, meta map[string]any) error
}

// Service owns the wallet rules: the local equivalent is computed exactly
// once at write time, and the balance is always refolded from the store's
// current contents.
type Service struct {
	repo     Repository
	audit    AuditRecorder
	policy   Policy
	validate *validator.Validate
}

// NewService constructs a Service. audit may be nil.
func NewService(repo Repository, audit AuditRecorder, policy Policy) *Service {
	return &Service{
		repo:     repo,
		audit:    audit,
		policy:   policy,
		validate: validator.New(),
	}
}

// Balance returns the current wallet balance in foreign currency.
func (s *Service) Balance(ctx context.Context) (decimal.Decimal, error) {
	events, err := s.repo.ListAll(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return WalletBalance(events), nil
}

// Overview builds the ad-spend page payload: balance, lifetime totals and
// the event list newest first.
func (s *Service) Overview(ctx context.Context) (WalletOverview, error) {
	events, err := s.repo.ListAll(ctx)
	if err != nil {
		return WalletOverview{}, err
	}

	loaded := decimal.Zero
	spent := decimal.Zero
	for _, ev := range events {
		if ev.Kind == KindLoad {
			loaded = loaded.Add(ev.Amount)
		} else {
			spent = spent.Add(ev.Amount)
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].OccurredAt.Equal(events[j].OccurredAt) {
			return events[i].OccurredAt.After(events[j].OccurredAt)
		}
		return events[i].ID > events[j].ID
	})

	return WalletOverview{
		Balance:     loaded.Sub(spent).StringFixed(2),
		TotalLoaded: loaded.StringFixed(2),
		TotalSpent:  spent.StringFixed(2),
		Events:      events,
	}, nil
}

// Record validates and stores one wallet movement. When overdraft is
// disallowed, a Spend that would push the balance negative is rejected.
func (s *Service) Record(ctx context.Context, req CreateEventRequest, actorID int64) (Event, error) {
	if err := s.validate.Struct(req); err != nil {
		return Event{}, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return Event{}, fmt.Errorf("%w: amount %q is not numeric", ErrValidation, req.Amount)
	}
	if amount.IsNegative() {
		return Event{}, fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}
	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		return Event{}, fmt.Errorf("%w: rate %q is not numeric", ErrValidation, req.Rate)
	}
	if !rate.IsPositive() {
		return Event{}, fmt.Errorf("%w: rate must be positive", ErrValidation)
	}

	kind := Kind(req.Kind)
	if kind == KindSpend && !s.policy.AllowOverdraft {
		balance, err := s.Balance(ctx)
		if err != nil {
			return Event{}, err
		}
		if balance.Sub(amount).IsNegative() {
			return Event{}, fmt.Errorf("%w: balance %s, spend %s", ErrInsufficientBalance, balance, amount)
		}
	}

	ev := Event{
		Kind:   kind,
		Amount: amount,
		Rate:   rate,
		// Fixed here, at write time. Later rate changes never touch it.
		LocalEquivalent: amount.Mul(rate),
		CompanyName:     req.CompanyName,
		Platform:        req.Platform,
		OccurredAt:      req.OccurredAt.UTC(),
		CreatedBy:       actorID,
	}
	created, err := s.repo.Create(ctx, ev)
	if err != nil {
		return Event{}, err
	}

	s.recordAudit(ctx, actorID, "fx.event.create", created.ID, map[string]any{
		"kind":   string(created.Kind),
		"amount": created.Amount.String(),
		"rate":   created.Rate.String(),
	})
	return created, nil
}

// Delete removes a wallet event; the balance refolds over the survivors.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "fx.event.delete", id, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, actorID, action, strconv.FormatInt(id, 10), meta)
}
