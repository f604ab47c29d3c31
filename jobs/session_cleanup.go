package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/officehub/officehub/internal/jobs"
)

// SessionPurger deletes session rows that expired before now.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// SessionCleanupJob keeps the sessions table bounded.
type SessionCleanupJob struct {
	Purger  SessionPurger
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewSessionCleanupJob wires the cleanup handler.
func NewSessionCleanupJob(purger SessionPurger, logger *slog.Logger, metrics *jobmetrics.Metrics) *SessionCleanupJob {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	return &SessionCleanupJob{
		Purger:  purger,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes session cleanup tasks.
func (j *SessionCleanupJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Purger == nil {
		return errors.New("session cleanup: handler not configured")
	}
	tracker := j.Metrics.Track(TaskSessionCleanup)
	removed, err := j.Purger.PurgeExpiredSessions(ctx, j.clock())
	if err != nil {
		j.Logger.Error("purge expired sessions", slog.Any("error", err))
		return tracker.End(err)
	}
	j.Metrics.AddRows(TaskSessionCleanup, removed)
	if removed > 0 {
		j.Logger.Info("purged expired sessions", slog.Int64("removed", removed))
	}
	return tracker.End(nil)
}
