package users

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/officehub/officehub/internal/platform/db"
	"github.com/officehub/officehub/internal/roles"
	"github.com/officehub/officehub/internal/shared"
)

// Repository is the persistence port for staff accounts.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]User, int, error)
	Get(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, u NewUser) (*User, error)
	Update(ctx context.Context, id int64, updates map[string]any) (*User, error)
	Delete(ctx context.Context, id int64) error
}

const userColumns = `id, email, username, employee_id, first_name, last_name, profile_image_url, role, department, title, is_active, created_at, updated_at`

// updatable lists the columns Update accepts.
var updatable = map[string]struct{}{
	"email": {}, "username": {}, "employee_id": {}, "password_hash": {},
	"first_name": {}, "last_name": {}, "profile_image_url": {}, "role": {},
	"department": {}, "title": {}, "is_active": {},
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

// List returns accounts newest first.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]User, int, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Role != nil {
		args = append(args, filter.Role.String())
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		conditions = append(conditions, fmt.Sprintf("(first_name ILIKE $%[1]d OR last_name ILIKE $%[1]d OR email ILIKE $%[1]d OR employee_id ILIKE $%[1]d)", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM users "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("users: count: %w", db.Translate(err))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf("SELECT %s FROM users %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", userColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("users: list: %w", db.Translate(err))
	}
	defer rows.Close()

	out := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("users: scan: %w", db.Translate(err))
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, db.Translate(err)
	}
	return out, total, nil
}

// Get loads one account.
func (r *PGRepository) Get(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		return nil, db.Translate(err)
	}
	return u, nil
}

// Create inserts an account.
func (r *PGRepository) Create(ctx context.Context, n NewUser) (*User, error) {
	const q = `INSERT INTO users (email, username, employee_id, password_hash, first_name, last_name, role, department, title, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)
RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRow(ctx, q,
		n.Email, text(n.Username), text(n.EmployeeID), n.PasswordHash,
		n.FirstName, n.LastName, n.Role.String(), text(n.Department), text(n.Title)))
	if err != nil {
		return nil, db.Translate(err)
	}
	return u, nil
}

// Update applies a partial update keyed by column name.
func (r *PGRepository) Update(ctx context.Context, id int64, updates map[string]any) (*User, error) {
	cols := make([]string, 0, len(updates))
	for col := range updates {
		if _, ok := updatable[col]; !ok {
			return nil, fmt.Errorf("users: column %q is not updatable", col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	var set db.Assignments
	for _, col := range cols {
		set.Set(col, updates[col])
	}
	query, args := set.Update("users", id, userColumns)
	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, db.Translate(err)
	}
	return u, nil
}

// Delete removes an account.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		u                                        User
		role                                     string
		username, employeeID, image, dept, title pgtype.Text
		createdAt, updatedAt                     pgtype.Timestamptz
	)
	err := row.Scan(&u.ID, &u.Email, &username, &employeeID, &u.FirstName, &u.LastName, &image, &role, &dept, &title, &u.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = roles.Parse(role)
	u.Username = ptr(username)
	u.EmployeeID = ptr(employeeID)
	u.ProfileImageURL = ptr(image)
	u.Department = ptr(dept)
	u.Title = ptr(title)
	u.CreatedAt = createdAt.Time
	u.UpdatedAt = updatedAt.Time
	return &u, nil
}

func text(s *string) pgtype.Text {
	if s == nil || strings.TrimSpace(*s) == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: strings.TrimSpace(*s), Valid: true}
}

func ptr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

var _ Repository = (*PGRepository)(nil)
