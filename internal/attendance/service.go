package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/officehub/officehub/internal/rbac"
	"github.com/officehub/officehub/internal/shared"
)

var (
	// ErrAlreadyCheckedIn is returned when today's record exists.
	ErrAlreadyCheckedIn = shared.Conflict("already checked in for today")
	// ErrAlreadyCheckedOut is returned on a second check-out.
	ErrAlreadyCheckedOut = shared.Conflict("already checked out today")
	// ErrNoCheckIn is returned when checking out without a record.
	ErrNoCheckIn = fmt.Errorf("%w: no check-in record found for today", shared.ErrNotFound)
)

// Service implements the attendance workflow.
type Service struct {
	repo   Repository
	policy rbac.Policy
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the service.
func NewService(repo Repository, policy rbac.Policy, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, policy: policy, logger: logger, now: time.Now}
}

// WithNow overrides the clock.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// CheckIn opens today's record for p.
func (s *Service) CheckIn(ctx context.Context, p shared.Principal, notes *string) (*Record, error) {
	now := s.now().UTC()
	day := WorkDate(now)
	if _, err := s.repo.FindByDate(ctx, p.UserID, day); err == nil {
		return nil, ErrAlreadyCheckedIn
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	rec, err := s.repo.CheckIn(ctx, p.UserID, day, now, notes)
	if errors.Is(err, shared.ErrConflict) {
		return nil, ErrAlreadyCheckedIn
	}
	return rec, err
}

// CheckOut closes today's record and computes work hours.
func (s *Service) CheckOut(ctx context.Context, p shared.Principal) (*Record, error) {
	now := s.now().UTC()
	rec, err := s.repo.FindByDate(ctx, p.UserID, WorkDate(now))
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ErrNoCheckIn
	}
	if err != nil {
		return nil, err
	}
	if rec.CheckOutTime != nil {
		return nil, ErrAlreadyCheckedOut
	}
	in := now
	if rec.CheckInTime != nil {
		in = *rec.CheckInTime
	}
	out, err := s.repo.CheckOut(ctx, rec.ID, now, WorkHours(in, now))
	if errors.Is(err, shared.ErrNotFound) {
		return nil, ErrAlreadyCheckedOut
	}
	return out, err
}

// Today returns p's record for today, or nil when there is none.
func (s *Service) Today(ctx context.Context, p shared.Principal) (*Record, error) {
	rec, err := s.repo.FindByDate(ctx, p.UserID, WorkDate(s.now()))
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	return rec, err
}

// History returns the last records of userID. Viewing someone else needs
// attendance.view_all.
func (s *Service) History(ctx context.Context, p shared.Principal, userID int64) ([]Record, error) {
	if userID == 0 {
		userID = p.UserID
	}
	if userID != p.UserID {
		if err := s.policy.Authorize(p, shared.PermAttendanceViewAll); err != nil {
			return nil, err
		}
	}
	return s.repo.History(ctx, userID, HistoryLimit)
}
