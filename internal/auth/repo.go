package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/officehub/officehub/internal/platform/db"
	"github.com/officehub/officehub/internal/roles"
)

// Repository defines persistence operations for auth module.
type Repository interface {
	UserStore
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// AccountStore re-reads an account by id so live sessions follow role and
// activation changes.
type AccountStore interface {
	FindByID(ctx context.Context, id int64) (*User, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

const userColumns = `id, email, COALESCE(username, ''), password_hash, first_name, last_name, role, is_active, created_at, updated_at`

// FindByIdentifier fetches a user by email or username.
func (r *PGRepository) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	const q = `SELECT ` + userColumns + `
FROM users
WHERE LOWER(email) = LOWER($1) OR LOWER(username) = LOWER($1)
ORDER BY (LOWER(email) = LOWER($1)) DESC
LIMIT 1`
	return scanUser(r.db.QueryRow(ctx, q, identifier))
}

// FindByID fetches a user by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		u         User
		role      string
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName, &role, &u.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return nil, db.Translate(err)
	}
	u.Role = roles.Parse(role)
	u.CreatedAt = createdAt.Time
	u.UpdatedAt = updatedAt.Time
	return &u, nil
}

// UpdatePasswordHash stores a new credential hash.
func (r *PGRepository) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, userID, hash)
	return db.Translate(err)
}

// CreateSession persists a new login session in the database for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO sessions (id, user_id, ip, user_agent, created_at, expires_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, userID,
		pgtype.Text{String: ip, Valid: ip != ""},
		pgtype.Text{String: ua, Valid: ua != ""},
		time.Now().UTC(), expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("auth: create session: %w", db.Translate(err))
	}
	return nil
}

// DeleteSession removes a session record from the database.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return db.Translate(err)
}

// DeleteExpiredSessions purges rows whose expiry has passed.
func (r *PGRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now.UTC())
	if err != nil {
		return 0, db.Translate(err)
	}
	return tag.RowsAffected(), nil
}

var (
	_ Repository   = (*PGRepository)(nil)
	_ AccountStore = (*PGRepository)(nil)
)
