package expenses

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/officehub/officehub/internal/platform/db"
	"github.com/officehub/officehub/internal/shared"
)

// Repository is the persistence port for expenses.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Expense, error)
	Get(ctx context.Context, id int64) (*Expense, error)
	Create(ctx context.Context, e NewExpense) (*Expense, error)
	SetStatus(ctx context.Context, id int64, status shared.ApprovalStatus, approver *int64, at *time.Time) (*Expense, error)
}

const expenseSelect = `SELECT e.id, e.user_id, COALESCE(TRIM(u.first_name || ' ' || u.last_name), ''),
       e.amount, e.category, e.description, e.expense_date, e.receipt_url, e.status,
       e.approved_by_id, e.approved_at, e.created_at, e.updated_at
FROM expenses e
LEFT JOIN users u ON u.id = e.user_id`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

// List returns claims newest first.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Expense, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("e.user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, pgtype.Date{Time: *filter.From, Valid: true})
		conditions = append(conditions, fmt.Sprintf("e.expense_date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, pgtype.Date{Time: *filter.To, Valid: true})
		conditions = append(conditions, fmt.Sprintf("e.expense_date <= $%d", len(args)))
	}
	query := expenseSelect
	if len(conditions) > 0 {
		query += "\nWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\nORDER BY e.created_at DESC, e.id DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("expenses: list: %w", db.Translate(err))
	}
	defer rows.Close()
	out := make([]Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, db.Translate(err)
		}
		out = append(out, *e)
	}
	return out, db.Translate(rows.Err())
}

// Get loads one claim.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Expense, error) {
	e, err := scanExpense(r.db.QueryRow(ctx, expenseSelect+"\nWHERE e.id = $1", id))
	if err != nil {
		return nil, db.Translate(err)
	}
	return e, nil
}

// Create inserts a pending claim. The amount is sent as text so numeric
// keeps exactly two decimals.
func (r *PGRepository) Create(ctx context.Context, n NewExpense) (*Expense, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO expenses (user_id, amount, category, description, expense_date, receipt_url, status)
VALUES ($1, $2::numeric, $3, $4, $5, $6, 'pending') RETURNING id`,
		n.UserID, strconv.FormatFloat(n.Amount, 'f', 2, 64), n.Category, n.Description,
		pgtype.Date{Time: n.Date, Valid: true}, n.ReceiptURL).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("expenses: create: %w", db.Translate(err))
	}
	return r.Get(ctx, id)
}

// SetStatus records a review decision.
func (r *PGRepository) SetStatus(ctx context.Context, id int64, status shared.ApprovalStatus, approver *int64, at *time.Time) (*Expense, error) {
	tag, err := r.db.Exec(ctx, `UPDATE expenses SET status = $2, approved_by_id = $3, approved_at = $4, updated_at = NOW() WHERE id = $1`,
		id, string(status), approver, at)
	if err != nil {
		return nil, fmt.Errorf("expenses: set status: %w", db.Translate(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.Get(ctx, id)
}

func scanExpense(row pgx.Row) (*Expense, error) {
	var (
		e                    Expense
		amount               pgtype.Numeric
		status               string
		day                  pgtype.Date
		receipt              pgtype.Text
		approver             pgtype.Int8
		approvedAt           pgtype.Timestamptz
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&e.ID, &e.UserID, &e.UserName, &amount, &e.Category, &e.Description, &day, &receipt, &status, &approver, &approvedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if f, err := amount.Float64Value(); err == nil && f.Valid {
		e.Amount = f.Float64
	}
	e.Date = day.Time.Format(DateLayout)
	if receipt.Valid {
		e.ReceiptURL = &receipt.String
	}
	e.Status = shared.ApprovalStatus(status)
	if approver.Valid {
		v := approver.Int64
		e.ApprovedByID = &v
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		e.ApprovedAt = &t
	}
	e.CreatedAt = createdAt.Time
	e.UpdatedAt = updatedAt.Time
	return &e, nil
}

var _ Repository = (*PGRepository)(nil)
