package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/officehub/officehub/internal/jobs"
	"github.com/officehub/officehub/internal/platform/db"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// SummaryStore writes the monthly rollup for [from, to).
type SummaryStore interface {
	RollupMonth(ctx context.Context, year, month int, from, to time.Time) (int64, error)
}

// PGSummaryStore implements SummaryStore with a single upsert.
type PGSummaryStore struct {
	db db.DBTX
}

// NewSummaryStore constructs the store.
func NewSummaryStore(conn db.DBTX) *PGSummaryStore {
	return &PGSummaryStore{db: conn}
}

const rollupSQL = `INSERT INTO monthly_summaries (user_id, year, month, total_tasks, completed_tasks, in_progress_tasks,
       pending_tasks, attendance_days, leave_days, total_expenses, generated_at)
SELECT u.id, $1, $2,
       (SELECT COUNT(*) FROM tasks t WHERE t.assigned_to_id = u.id AND t.created_at >= $3 AND t.created_at < $4),
       (SELECT COUNT(*) FROM tasks t WHERE t.assigned_to_id = u.id AND t.status = 'completed' AND t.created_at >= $3 AND t.created_at < $4),
       (SELECT COUNT(*) FROM tasks t WHERE t.assigned_to_id = u.id AND t.status = 'in_progress' AND t.created_at >= $3 AND t.created_at < $4),
       (SELECT COUNT(*) FROM tasks t WHERE t.assigned_to_id = u.id AND t.status = 'pending' AND t.created_at >= $3 AND t.created_at < $4),
       (SELECT COUNT(*) FROM attendance a WHERE a.user_id = u.id AND a.status IN ('present', 'half_day')
            AND a.work_date >= $3::date AND a.work_date < $4::date),
       (SELECT COALESCE(SUM(l.days), 0) FROM leaves l WHERE l.user_id = u.id AND l.status = 'approved'
            AND l.start_date >= $3::date AND l.start_date < $4::date),
       (SELECT COALESCE(SUM(e.amount), 0) FROM expenses e WHERE e.user_id = u.id AND e.status = 'approved'
            AND e.expense_date >= $3::date AND e.expense_date < $4::date),
       NOW()
FROM users u
WHERE u.is_active
ON CONFLICT (user_id, year, month) DO UPDATE SET
    total_tasks = EXCLUDED.total_tasks,
    completed_tasks = EXCLUDED.completed_tasks,
    in_progress_tasks = EXCLUDED.in_progress_tasks,
    pending_tasks = EXCLUDED.pending_tasks,
    attendance_days = EXCLUDED.attendance_days,
    leave_days = EXCLUDED.leave_days,
    total_expenses = EXCLUDED.total_expenses,
    generated_at = EXCLUDED.generated_at`

// RollupMonth upserts one row per active user and returns how many were written.
func (s *PGSummaryStore) RollupMonth(ctx context.Context, year, month int, from, to time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, rollupSQL, year, month, from, to)
	if err != nil {
		return 0, db.Translate(err)
	}
	return tag.RowsAffected(), nil
}

// MonthlySummaryJob rolls up task, attendance, leave and expense activity.
type MonthlySummaryJob struct {
	Store   SummaryStore
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewMonthlySummaryJob wires dependencies for the rollup handler.
func NewMonthlySummaryJob(store SummaryStore, logger *slog.Logger, metrics *jobmetrics.Metrics) *MonthlySummaryJob {
	return &MonthlySummaryJob{
		Store:   store,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes monthly summary tasks.
func (j *MonthlySummaryJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("monthly summary: handler not configured")
	}
	tracker := j.metrics().Track(TaskMonthlySummary)
	var payload MonthlySummaryPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return tracker.End(fmt.Errorf("monthly summary: decode payload: %w", asynq.SkipRetry))
		}
	}
	year, month, err := resolveMonth(payload, j.clock())
	if err != nil {
		return tracker.End(fmt.Errorf("%w: %w", err, asynq.SkipRetry))
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	logger := j.logger().With(slog.Int("year", year), slog.Int("month", month))

	rows, err := j.Store.RollupMonth(ctx, year, month, from, to)
	if err != nil {
		logger.Error("monthly summary rollup", slog.Any("error", err))
		return tracker.End(err)
	}
	j.metrics().AddRows(TaskMonthlySummary, rows)
	logger.Info("monthly summary written", slog.Int64("rows", rows))
	return tracker.End(nil)
}

// resolveMonth defaults to the month before now.
func resolveMonth(p MonthlySummaryPayload, now time.Time) (int, int, error) {
	if p.Year == 0 && p.Month == 0 {
		prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
		return prev.Year(), int(prev.Month()), nil
	}
	if p.Month < 1 || p.Month > 12 || p.Year < 2000 {
		return 0, 0, fmt.Errorf("monthly summary: invalid period %04d-%02d", p.Year, p.Month)
	}
	return p.Year, p.Month, nil
}

func (j *MonthlySummaryJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *MonthlySummaryJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
