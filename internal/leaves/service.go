package leaves

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/officehub/officehub/internal/shared"
)

const idempotencyModule = "leaves"

// Idempotency guards submissions against client retries.
type Idempotency interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key, module string) error
}

// Service implements the leave workflow.
type Service struct {
	repo   Repository
	audit  shared.AuditRecorder
	idem   Idempotency
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the service. audit and idem may be nil.
func NewService(repo Repository, audit shared.AuditRecorder, idem Idempotency, logger *slog.Logger) *Service {
	if audit == nil {
		audit = shared.NopAudit{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, idem: idem, logger: logger, now: time.Now}
}

// List returns the requests visible to p.
func (s *Service) List(ctx context.Context, p shared.Principal, status shared.ApprovalStatus) ([]Leave, error) {
	return s.repo.List(ctx, ListFilter{UserID: p.Scope(), Status: status})
}

// Request files a pending leave for p. A repeated idempotency key is rejected.
func (s *Service) Request(ctx context.Context, p shared.Principal, req CreateLeaveRequest, idemKey string) (*Leave, error) {
	start, err := time.Parse(DateLayout, req.StartDate)
	if err != nil {
		return nil, shared.Invalid("startDate must be formatted as YYYY-MM-DD")
	}
	end, err := time.Parse(DateLayout, req.EndDate)
	if err != nil {
		return nil, shared.Invalid("endDate must be formatted as YYYY-MM-DD")
	}
	days, err := InclusiveDays(start, end)
	if err != nil {
		return nil, err
	}

	if s.idem != nil {
		if err := s.idem.CheckAndInsert(ctx, idemKey, idempotencyModule); err != nil {
			return nil, err
		}
	}
	leave, err := s.repo.Create(ctx, NewLeave{
		UserID:    p.UserID,
		Type:      Type(req.Type),
		StartDate: start,
		EndDate:   end,
		Days:      days,
		Reason:    strings.TrimSpace(req.Reason),
	})
	if err != nil {
		if s.idem != nil {
			_ = s.idem.Delete(ctx, idemKey, idempotencyModule)
		}
		return nil, err
	}
	return leave, nil
}

// Review sets the status and stamps the reviewer. Moving back to pending
// clears the reviewer.
func (s *Service) Review(ctx context.Context, p shared.Principal, id int64, status shared.ApprovalStatus, note string) (*Leave, error) {
	var (
		approver *int64
		at       *time.Time
	)
	if status.Decided() {
		actor := p.UserID
		now := s.now().UTC()
		approver, at = &actor, &now
		if actor <= 0 {
			approver = nil
		}
	}
	leave, err := s.repo.SetStatus(ctx, id, status, approver, at)
	if err != nil {
		return nil, err
	}
	decision := shared.ApprovalDecision{Module: "leave", RefID: id, ActorID: p.UserID, Status: status, Note: note}
	if at != nil {
		decision.At = *at
	}
	meta := map[string]any{"user_id": leave.UserID, "days": leave.Days}
	if err := shared.RecordApproval(ctx, s.audit, decision, meta); err != nil {
		s.logger.Warn("audit leave decision", slog.Int64("leave_id", id), slog.Any("error", err))
	}
	return leave, nil
}

// Message is the client text for a review outcome.
func Message(status shared.ApprovalStatus) string {
	return fmt.Sprintf("Leave request %s", status)
}
