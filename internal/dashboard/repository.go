package dashboard

import (
	"context"
	"time"

	"github.com/officehub/officehub/internal/platform/db"
)

// Repository runs the individual counts. A nil assignee means unscoped.
type Repository interface {
	CountTasksCreatedBetween(ctx context.Context, from, to time.Time, assignee *int64) (int64, error)
	CountPendingTasks(ctx context.Context, priorities []string, assignee *int64) (int64, error)
	CountActiveUsers(ctx context.Context) (int64, error)
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a PGRepository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

// CountTasksCreatedBetween counts tasks created in [from, to].
func (r *PGRepository) CountTasksCreatedBetween(ctx context.Context, from, to time.Time, assignee *int64) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks
WHERE created_at >= $1 AND created_at <= $2
  AND ($3::bigint IS NULL OR assigned_to_id = $3)`, from, to, assignee).Scan(&n)
	return n, db.Translate(err)
}

// CountPendingTasks counts pending tasks whose priority is in priorities.
func (r *PGRepository) CountPendingTasks(ctx context.Context, priorities []string, assignee *int64) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tasks
WHERE status = 'pending' AND priority = ANY($1)
  AND ($2::bigint IS NULL OR assigned_to_id = $2)`, priorities, assignee).Scan(&n)
	return n, db.Translate(err)
}

// CountActiveUsers counts users with the active flag set.
func (r *PGRepository) CountActiveUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_active = TRUE`).Scan(&n)
	return n, db.Translate(err)
}

var _ Repository = (*PGRepository)(nil)
