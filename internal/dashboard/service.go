package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/officehub/officehub/internal/shared"
)

// Service computes summaries.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires a Repository with an optional Cache.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Invalidate drops cached summaries after a write.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// Summary returns the aggregation for q. Cache trouble never fails the
// request; a failed count always does.
func (s *Service) Summary(ctx context.Context, q Query) (Summary, error) {
	rq, err := q.resolve()
	if err != nil {
		return Summary{}, err
	}
	if s.cache == nil {
		return s.compute(ctx, rq)
	}

	key, err := s.cache.BuildKey(ctx, rq.cacheParts()...)
	if err != nil {
		s.logger.Warn("dashboard cache key", slog.Any("error", err))
		return s.compute(ctx, rq)
	}
	var out Summary
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.compute(ctx, rq)
	})
	if err == nil {
		return out, nil
	}
	if errors.Is(err, ErrWriteBack) {
		s.logger.Warn("dashboard cache store", slog.Any("error", err))
		return out, nil
	}
	if errors.Is(err, shared.ErrAggregation) {
		return Summary{}, err
	}
	s.logger.Warn("dashboard cache", slog.Any("error", err))
	return s.compute(ctx, rq)
}

// counts holds one slot per query; each goroutine owns exactly one field.
type counts struct {
	tasksInWindow int64
	pendingHigh   int64
	pendingMedium int64
	pendingLow    int64
	activeStaff   int64
}

// compute issues the five counts concurrently and joins them. The group has
// no derived context: a failing count does not cancel its siblings.
func (s *Service) compute(ctx context.Context, rq resolvedQuery) (Summary, error) {
	from, to := rq.window(s.now())
	var (
		g errgroup.Group
		c counts
	)

	g.Go(func() error {
		n, err := s.repo.CountTasksCreatedBetween(ctx, from, to, rq.assignee)
		if err != nil {
			return fmt.Errorf("tasks in window: %w", err)
		}
		c.tasksInWindow = n
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.CountPendingTasks(ctx, highTier, rq.assignee)
		if err != nil {
			return fmt.Errorf("pending high: %w", err)
		}
		c.pendingHigh = n
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.CountPendingTasks(ctx, mediumTier, rq.assignee)
		if err != nil {
			return fmt.Errorf("pending medium: %w", err)
		}
		c.pendingMedium = n
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.CountPendingTasks(ctx, lowTier, rq.assignee)
		if err != nil {
			return fmt.Errorf("pending low: %w", err)
		}
		c.pendingLow = n
		return nil
	})
	g.Go(func() error {
		n, err := s.repo.CountActiveUsers(ctx)
		if err != nil {
			return fmt.Errorf("active staff: %w", err)
		}
		c.activeStaff = n
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("dashboard aggregation", slog.Any("error", err))
		return Summary{}, fmt.Errorf("%w: %w", shared.ErrAggregation, err)
	}

	return Summary{
		TasksInWindow:    nonNegative(c.tasksInWindow),
		ActiveStaffCount: nonNegative(c.activeStaff),
		PendingByPriority: PendingByPriority{
			High:   nonNegative(c.pendingHigh),
			Medium: nonNegative(c.pendingMedium),
			Low:    nonNegative(c.pendingLow),
			Total:  nonNegative(c.pendingHigh) + nonNegative(c.pendingMedium) + nonNegative(c.pendingLow),
		},
		WindowDays: rq.days,
	}, nil
}

func nonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
