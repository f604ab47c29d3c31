package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/officehub/officehub/internal/shared"
)

// Invalidator drops cached dashboard figures after task writes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service implements task workflows.
type Service struct {
	repo        Repository
	invalidator Invalidator
	logger      *slog.Logger
}

// NewService constructs the service. invalidator may be nil.
func NewService(repo Repository, invalidator Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, invalidator: invalidator, logger: logger}
}

// List returns the tasks visible to the principal. Non-elevated callers only
// see tasks they are assigned to or created.
func (s *Service) List(ctx context.Context, p shared.Principal, filter ListFilter) ([]Task, error) {
	filter.Participant = p.Scope()
	return s.repo.List(ctx, filter)
}

// Create assigns a new pending task on behalf of p.
func (s *Service) Create(ctx context.Context, p shared.Principal, req CreateTaskRequest) (*Task, error) {
	priority := PriorityMedium
	if req.Priority != "" {
		priority = Priority(req.Priority)
	}
	n := NewTask{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		AssignedToID: req.AssignedToID,
		AssignedByID: p.UserID,
		Priority:     priority,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := time.Parse(DateLayout, *req.DueDate)
		if err != nil {
			return nil, shared.Invalid("dueDate must be formatted as YYYY-MM-DD")
		}
		n.DueDate = &due
	}
	t, err := s.repo.Create(ctx, n)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return t, nil
}

// UpdateStatus sets any of the four statuses.
func (s *Service) UpdateStatus(ctx context.Context, p shared.Principal, id int64, status Status) (*Task, error) {
	if _, err := s.authorize(ctx, p, id); err != nil {
		return nil, err
	}
	return s.write(ctx, id, map[string]any{"status": string(status)})
}

// UpdateProgress records a completion level. Reaching 100 completes the
// task and starting work moves a pending task in progress.
func (s *Service) UpdateProgress(ctx context.Context, p shared.Principal, id int64, level int, notes *string) (*Task, error) {
	if level < 0 || level > 100 {
		return nil, shared.Invalid("completionLevel must be between 0 and 100")
	}
	current, err := s.authorize(ctx, p, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{"completion_level": level}
	switch {
	case level == 100:
		updates["status"] = string(StatusCompleted)
	case level > 0 && current.Status == StatusPending:
		updates["status"] = string(StatusInProgress)
	}
	if notes != nil {
		updates["notes"] = *notes
	}
	return s.write(ctx, id, updates)
}

// Reassign hands the task to another user and marks it reassigned.
func (s *Service) Reassign(ctx context.Context, p shared.Principal, id, assigneeID int64, notes *string) (*Task, error) {
	if assigneeID <= 0 {
		return nil, shared.Invalid("assignedToId is required")
	}
	if _, err := s.authorize(ctx, p, id); err != nil {
		return nil, err
	}
	updates := map[string]any{
		"assigned_to_id": assigneeID,
		"status":         string(StatusReassigned),
	}
	if notes != nil {
		updates["notes"] = *notes
	}
	return s.write(ctx, id, updates)
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, p shared.Principal, id int64) error {
	if _, err := s.authorize(ctx, p, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// authorize loads the task and checks that p may change it.
func (s *Service) authorize(ctx context.Context, p shared.Principal, id int64) (*Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Elevated() && !t.Involves(p.UserID) {
		return nil, fmt.Errorf("%w: task belongs to another user", shared.ErrForbidden)
	}
	return t, nil
}

func (s *Service) write(ctx context.Context, id int64, updates map[string]any) (*Task, error) {
	t, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return t, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate dashboard cache", slog.Any("error", err))
	}
}
