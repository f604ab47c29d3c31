package tasks

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/officehub/officehub/internal/platform/db"
	"github.com/officehub/officehub/internal/shared"
)

// Repository is the persistence port for tasks.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Task, error)
	Get(ctx context.Context, id int64) (*Task, error)
	Create(ctx context.Context, t NewTask) (*Task, error)
	Update(ctx context.Context, id int64, updates map[string]any) (*Task, error)
	Delete(ctx context.Context, id int64) error
}

const taskSelect = `SELECT t.id, t.title, t.description, t.assigned_to_id,
       COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), 'Unassigned'),
       t.assigned_by_id, t.status, t.priority, t.due_date, t.completion_level, t.notes,
       t.created_at, t.updated_at
FROM tasks t
LEFT JOIN users u ON u.id = t.assigned_to_id`

var updatable = map[string]struct{}{
	"status": {}, "completion_level": {}, "notes": {}, "assigned_to_id": {},
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

// List returns tasks newest first.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Task, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Participant != nil {
		args = append(args, *filter.Participant)
		conditions = append(conditions, fmt.Sprintf("(t.assigned_to_id = $%[1]d OR t.assigned_by_id = $%[1]d)", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		conditions = append(conditions, fmt.Sprintf("t.assigned_to_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", len(args)))
	}
	if filter.Priority != "" {
		args = append(args, string(filter.Priority))
		conditions = append(conditions, fmt.Sprintf("t.priority = $%d", len(args)))
	}
	query := taskSelect
	if len(conditions) > 0 {
		query += "\nWHERE " + strings.Join(conditions, " AND ")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	args = append(args, limit, filter.Offset)
	query += fmt.Sprintf("\nORDER BY t.created_at DESC, t.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("tasks: list: %w", db.Translate(err))
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("tasks: scan: %w", db.Translate(err))
		}
		out = append(out, *t)
	}
	return out, db.Translate(rows.Err())
}

// Get loads one task.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx, taskSelect+"\nWHERE t.id = $1", id))
	if err != nil {
		return nil, db.Translate(err)
	}
	return t, nil
}

// Create inserts a pending task.
func (r *PGRepository) Create(ctx context.Context, n NewTask) (*Task, error) {
	var due pgtype.Date
	if n.DueDate != nil {
		due = pgtype.Date{Time: *n.DueDate, Valid: true}
	}
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO tasks (title, description, assigned_to_id, assigned_by_id, status, priority, due_date)
VALUES ($1, $2, $3, $4, 'pending', $5, $6) RETURNING id`,
		n.Title, n.Description, n.AssignedToID, n.AssignedByID, string(n.Priority), due).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("tasks: create: %w", db.Translate(err))
	}
	return r.Get(ctx, id)
}

// Update applies a partial update keyed by column name.
func (r *PGRepository) Update(ctx context.Context, id int64, updates map[string]any) (*Task, error) {
	cols := make([]string, 0, len(updates))
	for col := range updates {
		if _, ok := updatable[col]; !ok {
			return nil, fmt.Errorf("tasks: column %q is not updatable", col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)
	var set db.Assignments
	for _, col := range cols {
		set.Set(col, updates[col])
	}
	query, args := set.Update("tasks", id, "")
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("tasks: update: %w", db.Translate(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes a task.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*Task, error) {
	var (
		t                    Task
		status, priority     string
		description, notes   pgtype.Text
		due                  pgtype.Date
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&t.ID, &t.Title, &description, &t.AssignedToID, &t.AssignedToName, &t.AssignedByID,
		&status, &priority, &due, &t.CompletionLevel, &notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	t.Status = Status(status)
	t.Priority = Priority(priority)
	if description.Valid {
		t.Description = &description.String
	}
	if notes.Valid {
		t.Notes = &notes.String
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time
	return &t, nil
}

var _ Repository = (*PGRepository)(nil)
