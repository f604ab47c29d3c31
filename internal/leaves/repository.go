package leaves

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/officehub/officehub/internal/platform/db"
	"github.com/officehub/officehub/internal/shared"
)

// Repository is the persistence port for leaves.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Leave, error)
	Get(ctx context.Context, id int64) (*Leave, error)
	Create(ctx context.Context, l NewLeave) (*Leave, error)
	SetStatus(ctx context.Context, id int64, status shared.ApprovalStatus, approver *int64, at *time.Time) (*Leave, error)
}

const leaveSelect = `SELECT l.id, l.user_id, COALESCE(TRIM(u.first_name || ' ' || u.last_name), ''),
       l.leave_type, l.start_date, l.end_date, l.days, l.reason, l.status,
       l.approved_by_id, l.approved_at, l.created_at, l.updated_at
FROM leaves l
LEFT JOIN users u ON u.id = l.user_id`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

// List returns requests newest first.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Leave, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("l.user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("l.status = $%d", len(args)))
	}
	query := leaveSelect
	if len(conditions) > 0 {
		query += "\nWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\nORDER BY l.created_at DESC, l.id DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leaves: list: %w", db.Translate(err))
	}
	defer rows.Close()
	out := make([]Leave, 0)
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, db.Translate(err)
		}
		out = append(out, *l)
	}
	return out, db.Translate(rows.Err())
}

// Get loads one request.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Leave, error) {
	l, err := scanLeave(r.db.QueryRow(ctx, leaveSelect+"\nWHERE l.id = $1", id))
	if err != nil {
		return nil, db.Translate(err)
	}
	return l, nil
}

// Create inserts a pending request.
func (r *PGRepository) Create(ctx context.Context, n NewLeave) (*Leave, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO leaves (user_id, leave_type, start_date, end_date, days, reason, status)
VALUES ($1, $2, $3, $4, $5, $6, 'pending') RETURNING id`,
		n.UserID, string(n.Type), pgtype.Date{Time: n.StartDate, Valid: true}, pgtype.Date{Time: n.EndDate, Valid: true}, n.Days, n.Reason).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("leaves: create: %w", db.Translate(err))
	}
	return r.Get(ctx, id)
}

// SetStatus records a review decision.
func (r *PGRepository) SetStatus(ctx context.Context, id int64, status shared.ApprovalStatus, approver *int64, at *time.Time) (*Leave, error) {
	tag, err := r.db.Exec(ctx, `UPDATE leaves SET status = $2, approved_by_id = $3, approved_at = $4, updated_at = NOW() WHERE id = $1`,
		id, string(status), approver, at)
	if err != nil {
		return nil, fmt.Errorf("leaves: set status: %w", db.Translate(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.Get(ctx, id)
}

func scanLeave(row pgx.Row) (*Leave, error) {
	var (
		l                    Leave
		kind, status         string
		start, end           pgtype.Date
		approver             pgtype.Int8
		approvedAt           pgtype.Timestamptz
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&l.ID, &l.UserID, &l.UserName, &kind, &start, &end, &l.Days, &l.Reason, &status, &approver, &approvedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	l.Type = Type(kind)
	l.Status = shared.ApprovalStatus(status)
	l.StartDate = start.Time.Format(DateLayout)
	l.EndDate = end.Time.Format(DateLayout)
	if approver.Valid {
		v := approver.Int64
		l.ApprovedByID = &v
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		l.ApprovedAt = &t
	}
	l.CreatedAt = createdAt.Time
	l.UpdatedAt = updatedAt.Time
	return &l, nil
}

var _ Repository = (*PGRepository)(nil)
