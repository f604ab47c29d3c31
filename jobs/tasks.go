package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskMonthlySummary rolls a month of activity into monthly_summaries.
	TaskMonthlySummary = "summaries:monthly"
	// TaskSessionCleanup deletes expired session rows.
	TaskSessionCleanup = "sessions:cleanup"
)

const (
	// MonthlySummaryCron runs at 01:00 UTC on the first of each month.
	MonthlySummaryCron = "0 1 1 * *"
	// SessionCleanupCron runs hourly.
	SessionCleanupCron = "0 * * * *"
)

// MonthlySummaryPayload names the month to roll up. Zero values mean the
// month before the run.
type MonthlySummaryPayload struct {
	Year  int `json:"year,omitempty"`
	Month int `json:"month,omitempty"`
}

// NewMonthlySummaryTask constructs an Asynq task for the monthly rollup.
func NewMonthlySummaryTask(year, month int) (*asynq.Task, error) {
	body, err := json.Marshal(MonthlySummaryPayload{Year: year, Month: month})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMonthlySummary, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// SessionCleanupPayload carries scheduling metadata.
type SessionCleanupPayload struct {
	ScheduledFor time.Time `json:"scheduled_for,omitempty"`
}

// NewSessionCleanupTask constructs an Asynq task for the session purge.
func NewSessionCleanupTask() (*asynq.Task, error) {
	body, err := json.Marshal(SessionCleanupPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionCleanup, body, asynq.Queue(QueueDefault), asynq.MaxRetry(1)), nil
}
