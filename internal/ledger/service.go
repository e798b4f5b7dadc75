package ledger

import (
	"context"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// AuditRecorder is the subset of shared.AuditLogger the service needs.
type AuditRecorder interface {
	Record(ctx context.Context, actorID int64, action, entityID string, meta map[string]any) error
}

// ServiceConfig tunes ledger behaviour.
type ServiceConfig struct {
	// OpeningBalance anchors the fold when the event history does not reach
	// back to account inception. Defaults to zero.
	OpeningBalance decimal.Decimal
}

// Service orchestrates the fetch, fold, filter and aggregate pipeline. Every
// computation runs fresh over the store's current contents; no balance is
// ever cached across mutations.
type Service struct {
	repo     Repository
	cache    *Cache
	audit    AuditRecorder
	validate *validator.Validate
	cfg      ServiceConfig
	group    singleflight.Group
}

// NewService constructs a Service. cache and audit may be nil.
func NewService(repo Repository, cache *Cache, audit AuditRecorder, cfg ServiceConfig) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		audit:    audit,
		validate: validator.New(),
		cfg:      cfg,
	}
}

// History returns the full annotated history in chronological order.
func (s *Service) History(ctx context.Context) ([]BalanceLine, error) {
	events, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeRunningBalances(events, s.cfg.OpeningBalance)
}

// CurrentBalance returns the balance after the latest event.
func (s *Service) CurrentBalance(ctx context.Context) (decimal.Decimal, error) {
	lines, err := s.History(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if len(lines) == 0 {
		return s.cfg.OpeningBalance, nil
	}
	return lines[len(lines)-1].RunningBalance, nil
}

// Overview builds the dashboard payload for one period: the period-scoped
// annotated lines (newest first for presentation), the period summary and
// the global current balance. Concurrent requests for the same period share
// one computation; the result is cached until the next mutation.
func (s *Service) Overview(ctx context.Context, p Period) (Overview, error) {
	if err := p.Validate(); err != nil {
		return Overview{}, err
	}
	if ov, ok := s.cache.GetOverview(ctx, p); ok {
		return ov, nil
	}

	v, err, _ := s.group.Do(overviewKey(p), func() (any, error) {
		return s.buildOverview(ctx, p)
	})
	if err != nil {
		return Overview{}, err
	}
	ov := v.(Overview)
	// Cache failures degrade to recompute-per-request.
	_ = s.cache.SetOverview(ctx, ov)
	return ov, nil
}

func (s *Service) buildOverview(ctx context.Context, p Period) (Overview, error) {
	lines, err := s.History(ctx)
	if err != nil {
		return Overview{}, err
	}

	current := s.cfg.OpeningBalance
	if len(lines) > 0 {
		current = lines[len(lines)-1].RunningBalance
	}

	scoped := FilterByPeriod(lines, p)
	summary := Summarize(scoped)

	// Newest first for the dashboard; RunningBalance values stay as the
	// chronological fold produced them.
	sort.SliceStable(scoped, func(i, j int) bool {
		if !scoped[i].OccurredAt.Equal(scoped[j].OccurredAt) {
			return scoped[i].OccurredAt.After(scoped[j].OccurredAt)
		}
		return scoped[i].ID > scoped[j].ID
	})

	return Overview{
		Period:         p,
		Lines:          scoped,
		Summary:        summary,
		CurrentBalance: current.String(),
	}, nil
}

// Record validates and stores one new ledger event.
func (s *Service) Record(ctx context.Context, req CreateEventRequest, actorID int64) (Event, error) {
	if err := s.validate.Struct(req); err != nil {
		return Event{}, Errorf(ErrValidation, "%s", err)
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return Event{}, Errorf(ErrValidation, "amount %q is not numeric", req.Amount)
	}
	if amount.IsNegative() {
		return Event{}, Errorf(ErrValidation, "amount must not be negative")
	}

	ev := Event{
		Kind:        Kind(req.Kind),
		Amount:      amount,
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		OccurredAt:  req.OccurredAt.UTC(),
		CreatedBy:   actorID,
	}
	created, err := s.repo.Create(ctx, ev)
	if err != nil {
		return Event{}, err
	}

	_ = s.cache.Invalidate(ctx)
	s.recordAudit(ctx, actorID, "ledger.event.create", created.ID, map[string]any{
		"kind":   string(created.Kind),
		"amount": created.Amount.String(),
	})
	return created, nil
}

// Delete removes an event. Deletion is destructive: all balances are
// recomputed from the surviving events on the next read.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Invalidate(ctx)
	s.recordAudit(ctx, actorID, "ledger.event.delete", id, nil)
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	// Audit is best effort; the mutation itself already succeeded.
	_ = s.audit.Record(ctx, actorID, action, strconv.FormatInt(id, 10), meta)
}
