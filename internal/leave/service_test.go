package leave

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/atrium-hq/atrium/jobs"
)

type memRepo struct {
	requests map[int64]*Request
	nextID   int64
}

func newMemRepo() *memRepo {
	return &memRepo{requests: make(map[int64]*Request), nextID: 1}
}

func (m *memRepo) Create(_ context.Context, r Request) (int64, error) {
	r.ID = m.nextID
	r.UserEmail = "user@test.local"
	r.CreatedAt = time.Now().UTC()
	m.nextID++
	m.requests[r.ID] = &r
	return r.ID, nil
}

func (m *memRepo) Get(_ context.Context, id int64) (*Request, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRepo) Settle(_ context.Context, id int64, status Status, decidedBy int64, decidedAt time.Time) error {
	r, ok := m.requests[id]
	if !ok {
		return ErrNotFound
	}
	if r.Status != StatusPending {
		return ErrAlreadySettled
	}
	r.Status = status
	r.DecidedBy = &decidedBy
	r.DecidedAt = &decidedAt
	return nil
}

func (m *memRepo) ListByUser(_ context.Context, userID int64) ([]Request, error) {
	var out []Request
	for _, r := range m.requests {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memRepo) ListPending(_ context.Context) ([]Request, error) {
	var out []Request
	for _, r := range m.requests {
		if r.Status == StatusPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

type mailerSpy struct {
	sent []jobs.SendEmailPayload
}

func (m *mailerSpy) EnqueueSendEmail(_ context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error) {
	m.sent = append(m.sent, payload)
	return &asynq.TaskInfo{}, nil
}

func day(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func TestSubmitAndApprove(t *testing.T) {
	repo := newMemRepo()
	mailer := &mailerSpy{}
	svc := NewService(repo, mailer, nil)

	req, err := svc.Submit(context.Background(), SubmitRequest{
		Type:      "ANNUAL",
		StartDate: day(2024, time.July, 1),
		EndDate:   day(2024, time.July, 5),
		Reason:    "Summer holiday",
	}, 3)
	require.NoError(t, err)
	require.Equal(t, StatusPending, req.Status)
	require.Equal(t, 5, req.Days())

	require.NoError(t, svc.Approve(context.Background(), req.ID, 1))

	settled, err := repo.Get(context.Background(), req.ID)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, settled.Status)
	require.Equal(t, int64(1), *settled.DecidedBy)

	require.Len(t, mailer.sent, 1)
	require.Equal(t, "user@test.local", mailer.sent[0].To)
	require.Contains(t, mailer.sent[0].Subject, "approved")
}

func TestRejectNotifies(t *testing.T) {
	repo := newMemRepo()
	mailer := &mailerSpy{}
	svc := NewService(repo, mailer, nil)

	req, err := svc.Submit(context.Background(), SubmitRequest{
		Type:      "SICK",
		StartDate: day(2024, time.July, 1),
		EndDate:   day(2024, time.July, 1),
	}, 3)
	require.NoError(t, err)

	require.NoError(t, svc.Reject(context.Background(), req.ID, 1))
	require.Len(t, mailer.sent, 1)
	require.Contains(t, mailer.sent[0].Body, "rejected")
}

func TestSubmitValidation(t *testing.T) {
	svc := NewService(newMemRepo(), nil, nil)

	_, err := svc.Submit(context.Background(), SubmitRequest{
		Type:      "SABBATICAL",
		StartDate: day(2024, time.July, 1),
		EndDate:   day(2024, time.July, 2),
	}, 3)
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Submit(context.Background(), SubmitRequest{
		Type:      "ANNUAL",
		StartDate: day(2024, time.July, 5),
		EndDate:   day(2024, time.July, 1),
	}, 3)
	require.ErrorIs(t, err, ErrValidation)
}

func TestSettleTwiceFails(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil, nil)

	req, err := svc.Submit(context.Background(), SubmitRequest{
		Type:      "UNPAID",
		StartDate: day(2024, time.July, 1),
		EndDate:   day(2024, time.July, 2),
	}, 3)
	require.NoError(t, err)

	require.NoError(t, svc.Approve(context.Background(), req.ID, 1))
	require.ErrorIs(t, svc.Reject(context.Background(), req.ID, 1), ErrAlreadySettled)
}

func TestSettleMissingRequest(t *testing.T) {
	svc := NewService(newMemRepo(), nil, nil)
	require.ErrorIs(t, svc.Approve(context.Background(), 99, 1), ErrNotFound)
}
