package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/atrium-hq/atrium/jobs"
)

// Mailer enqueues notification emails. Satisfied by jobs.Client; a nil Mailer
// disables notifications.
type Mailer interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// SubmitRequest carries a new leave request from the form layer.
type SubmitRequest struct {
	Type      string    `validate:"required,oneof=ANNUAL SICK UNPAID"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required"`
	Reason    string    `validate:"max=500"`
}

// Service implements the leave workflow.
type Service struct {
	repo     Repository
	mailer   Mailer
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, mailer Mailer, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		mailer:   mailer,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Submit files a new pending request.
func (s *Service) Submit(ctx context.Context, req SubmitRequest, userID int64) (*Request, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("%w: end_date before start_date", ErrValidation)
	}

	leave := Request{
		UserID:    userID,
		Type:      Type(req.Type),
		StartDate: req.StartDate.UTC(),
		EndDate:   req.EndDate.UTC(),
		Reason:    req.Reason,
		Status:    StatusPending,
	}
	id, err := s.repo.Create(ctx, leave)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	leave.ID = id
	return &leave, nil
}

// Mine lists the caller's requests, newest first.
func (s *Service) Mine(ctx context.Context, userID int64) ([]Request, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Pending lists all open requests, oldest first.
func (s *Service) Pending(ctx context.Context) ([]Request, error) {
	return s.repo.ListPending(ctx)
}

// Approve settles a pending request and notifies the requester by email.
func (s *Service) Approve(ctx context.Context, id, decidedBy int64) error {
	return s.settle(ctx, id, StatusApproved, decidedBy)
}

// Reject settles a pending request and notifies the requester by email.
func (s *Service) Reject(ctx context.Context, id, decidedBy int64) error {
	return s.settle(ctx, id, StatusRejected, decidedBy)
}

func (s *Service) settle(ctx context.Context, id int64, status Status, decidedBy int64) error {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Settle(ctx, id, status, decidedBy, s.now()); err != nil {
		return err
	}

	if s.mailer != nil && req.UserEmail != "" {
		verb := "approved"
		if status == StatusRejected {
			verb = "rejected"
		}
		payload := jobs.SendEmailPayload{
			To:      req.UserEmail,
			Subject: fmt.Sprintf("Leave request %s", verb),
			Body: fmt.Sprintf("Your %s leave from %s to %s has been %s.",
				req.Type, req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"), verb),
		}
		// Notification delivery is best effort; the decision already stands.
		if _, err := s.mailer.EnqueueSendEmail(ctx, payload); err != nil && s.logger != nil {
			s.logger.Warn("enqueue leave email", slog.Any("error", err))
		}
	}
	return nil
}
