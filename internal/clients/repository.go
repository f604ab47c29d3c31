package clients

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

// Repository is the persistence port for clients.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Client, error)
	Create(ctx context.Context, c Client) (*Client, error)
	Update(ctx context.Context, id int64, updates map[string]any) (*Client, error)
	Delete(ctx context.Context, id int64) error
}

const clientColumns = `id, name, email, phone, company, address, status, created_at, updated_at`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

// List returns clients newest first.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Client, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%[1]d OR email ILIKE $%[1]d OR company ILIKE $%[1]d)", len(args)))
	}
	query := "SELECT " + clientColumns + " FROM clients"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("clients: list: %w", db.Translate(err))
	}
	defer rows.Close()
	out := make([]Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, db.Translate(err)
		}
		out = append(out, *c)
	}
	return out, db.Translate(rows.Err())
}

// Create inserts a client. Duplicate emails surface as shared.ErrConflict.
func (r *PGRepository) Create(ctx context.Context, c Client) (*Client, error) {
	const q = `INSERT INTO clients (name, email, phone, company, address, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + clientColumns
	out, err := scanClient(r.db.QueryRow(ctx, q, c.Name, c.Email, c.Phone, c.Company, c.Address, string(c.Status)))
	if err != nil {
		return nil, db.Translate(err)
	}
	return out, nil
}

// Update applies a partial update keyed by column name.
func (r *PGRepository) Update(ctx context.Context, id int64, updates map[string]any) (*Client, error) {
	cols := make([]string, 0, len(updates))
	for col := range updates {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	var set db.Assignments
	for _, col := range cols {
		switch col {
		case "name", "email", "phone", "company", "address", "status":
			set.Set(col, updates[col])
		default:
			return nil, fmt.Errorf("clients: column %q is not updatable", col)
		}
	}
	query, args := set.Update("clients", id, clientColumns)
	out, err := scanClient(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, db.Translate(err)
	}
	return out, nil
}

// Delete removes a client.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		return db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanClient(row pgx.Row) (*Client, error) {
	var (
		c                       Client
		status                  string
		phone, company, address pgtype.Text
		createdAt, updatedAt    pgtype.Timestamptz
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &phone, &company, &address, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.Status = Status(status)
	if phone.Valid {
		c.Phone = &phone.String
	}
	if company.Valid {
		c.Company = &company.String
	}
	if address.Valid {
		c.Address = &address.String
	}
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return &c, nil
}

var _ Repository = (*PGRepository)(nil)
