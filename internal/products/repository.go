package products

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/officehub/officehub/internal/platform/db"
	"github.com/officehub/officehub/internal/shared"
)

// Repository is the persistence port for products.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p Product) (*Product, error)
	Update(ctx context.Context, id int64, updates map[string]any) (*Product, error)
	Delete(ctx context.Context, id int64) error
}

const productColumns = `id, name, category, description, short_description, premium_starting, coverage_amount,
       duration, features, terms, is_active, created_by_id, created_at, updated_at`

var updatable = map[string]struct{}{
	"name": {}, "category": {}, "description": {}, "short_description": {},
	"premium_starting": {}, "coverage_amount": {}, "duration": {},
	"features": {}, "terms": {}, "is_active": {},
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

// List returns products newest first.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	query := "SELECT " + productColumns + " FROM products WHERE ($1 = '' OR category = $1) AND (NOT $2 OR is_active) ORDER BY created_at DESC, id DESC"
	rows, err := r.db.Query(ctx, query, string(filter.Category), filter.ActiveOnly)
	if err != nil {
		return nil, fmt.Errorf("products: list: %w", db.Translate(err))
	}
	defer rows.Close()
	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, db.Translate(err)
		}
		out = append(out, *p)
	}
	return out, db.Translate(rows.Err())
}

// Get loads one product.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id))
	if err != nil {
		return nil, db.Translate(err)
	}
	return p, nil
}

// Create inserts an active product.
func (r *PGRepository) Create(ctx context.Context, p Product) (*Product, error) {
	features, err := EncodeFeatures(p.Features)
	if err != nil {
		return nil, err
	}
	const q = `INSERT INTO products (name, category, description, short_description, premium_starting, coverage_amount, duration, features, terms, is_active, created_by_id)
VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7, $8::jsonb, $9, TRUE, $10)
RETURNING ` + productColumns
	out, err := scanProduct(r.db.QueryRow(ctx, q, p.Name, string(p.Category), p.Description, p.ShortDescription,
		money(p.PremiumStarting), money(p.CoverageAmount), p.Duration, features, p.Terms, p.CreatedByID))
	if err != nil {
		return nil, fmt.Errorf("products: create: %w", db.Translate(err))
	}
	return out, nil
}

// Update applies a partial update keyed by column name.
func (r *PGRepository) Update(ctx context.Context, id int64, updates map[string]any) (*Product, error) {
	cols := make([]string, 0, len(updates))
	for col := range updates {
		if _, ok := updatable[col]; !ok {
			return nil, fmt.Errorf("products: column %q is not updatable", col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)
	var set db.Assignments
	for _, col := range cols {
		v := updates[col]
		switch col {
		case "features":
			encoded, err := EncodeFeatures(v.([]string))
			if err != nil {
				return nil, err
			}
			v = encoded
		case "premium_starting", "coverage_amount":
			f := v.(float64)
			v = money(&f)
		}
		set.Set(col, v)
	}
	query, args := set.Update("products", id, productColumns)
	out, err := scanProduct(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, db.Translate(err)
	}
	return out, nil
}

// Delete removes a product.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return db.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// EncodeFeatures renders the feature list as a JSON array, never null.
func EncodeFeatures(features []string) (string, error) {
	if features == nil {
		features = []string{}
	}
	b, err := json.Marshal(features)
	if err != nil {
		return "", fmt.Errorf("products: encode features: %w", err)
	}
	return string(b), nil
}

// DecodeFeatures parses a stored feature list. Empty input yields an empty list.
func DecodeFeatures(raw []byte) ([]string, error) {
	out := []string{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("products: decode features: %w", err)
	}
	return out, nil
}

func money(v *float64) *string {
	if v == nil {
		return nil
	}
	s := strconv.FormatFloat(*v, 'f', 2, 64)
	return &s
}

func scanProduct(row pgx.Row) (*Product, error) {
	var (
		p                    Product
		category             string
		premium, coverage    pgtype.Numeric
		features             []byte
		terms                pgtype.Text
		createdBy            pgtype.Int8
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&p.ID, &p.Name, &category, &p.Description, &p.ShortDescription, &premium, &coverage,
		&p.Duration, &features, &terms, &p.IsActive, &createdBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.Category = Category(category)
	p.PremiumStarting = numeric(premium)
	p.CoverageAmount = numeric(coverage)
	if p.Features, err = DecodeFeatures(features); err != nil {
		return nil, err
	}
	if terms.Valid {
		p.Terms = &terms.String
	}
	if createdBy.Valid {
		v := createdBy.Int64
		p.CreatedByID = &v
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	return &p, nil
}

func numeric(n pgtype.Numeric) *float64 {
	if !n.Valid {
		return nil
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

var _ Repository = (*PGRepository)(nil)
