package expenses

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/officehub/officehub/internal/shared"
)

const idempotencyModule = "expenses"

// Idempotency guards submissions against client retries.
type Idempotency interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key, module string) error
}

// Service implements the expense workflow.
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

// List returns the claims visible to p.
func (s *Service) List(ctx context.Context, p shared.Principal, filter ListFilter) ([]Expense, error) {
	filter.UserID = p.Scope()
	return s.repo.List(ctx, filter)
}

// Submit files a pending claim for p.
func (s *Service) Submit(ctx context.Context, p shared.Principal, req CreateExpenseRequest, idemKey string) (*Expense, error) {
	amount := math.Round(req.Amount*100) / 100
	if amount <= 0 {
		return nil, shared.Invalid("amount must be greater than zero")
	}
	if amount > MaxAmount {
		return nil, shared.Invalid("amount is too large")
	}
	day, err := time.Parse(DateLayout, req.Date)
	if err != nil {
		return nil, shared.Invalid("date must be formatted as YYYY-MM-DD")
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return nil, shared.Invalid("category is required")
	}

	if s.idem != nil {
		if err := s.idem.CheckAndInsert(ctx, idemKey, idempotencyModule); err != nil {
			return nil, err
		}
	}
	e, err := s.repo.Create(ctx, NewExpense{
		UserID:      p.UserID,
		Amount:      amount,
		Category:    category,
		Description: strings.TrimSpace(req.Description),
		Date:        day,
		ReceiptURL:  req.ReceiptURL,
	})
	if err != nil {
		if s.idem != nil {
			_ = s.idem.Delete(ctx, idemKey, idempotencyModule)
		}
		return nil, err
	}
	return e, nil
}

// Review sets the status and stamps the reviewer.
func (s *Service) Review(ctx context.Context, p shared.Principal, id int64, status shared.ApprovalStatus, note string) (*Expense, error) {
	var (
		approver *int64
		at       *time.Time
	)
	if status.Decided() {
		now := s.now().UTC()
		at = &now
		if p.UserID > 0 {
			actor := p.UserID
			approver = &actor
		}
	}
	e, err := s.repo.SetStatus(ctx, id, status, approver, at)
	if err != nil {
		return nil, err
	}
	decision := shared.ApprovalDecision{Module: "expense", RefID: id, ActorID: p.UserID, Status: status, Note: note}
	if at != nil {
		decision.At = *at
	}
	meta := map[string]any{"user_id": e.UserID, "amount": e.Amount, "category": e.Category}
	if err := shared.RecordApproval(ctx, s.audit, decision, meta); err != nil {
		s.logger.Warn("audit expense decision", slog.Int64("expense_id", id), slog.Any("error", err))
	}
	return e, nil
}

// Message is the client text for a review outcome.
func Message(status shared.ApprovalStatus) string {
	return fmt.Sprintf("Expense %s", status)
}
