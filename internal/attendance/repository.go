package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/officehub/officehub/internal/platform/db"
)

// Repository is the persistence port for attendance.
type Repository interface {
	FindByDate(ctx context.Context, userID int64, day time.Time) (*Record, error)
	CheckIn(ctx context.Context, userID int64, day, at time.Time, notes *string) (*Record, error)
	CheckOut(ctx context.Context, id int64, at time.Time, hours float64) (*Record, error)
	History(ctx context.Context, userID int64, limit int) ([]Record, error)
}

const recordColumns = `id, user_id, work_date, check_in_time, check_out_time, status, work_hours, notes, created_at`

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

// FindByDate loads the record of day, or shared.ErrNotFound.
func (r *PGRepository) FindByDate(ctx context.Context, userID int64, day time.Time) (*Record, error) {
	rec, err := scanRecord(r.db.QueryRow(ctx, "SELECT "+recordColumns+" FROM attendance WHERE user_id = $1 AND work_date = $2",
		userID, pgtype.Date{Time: day, Valid: true}))
	if err != nil {
		return nil, db.Translate(err)
	}
	return rec, nil
}

// CheckIn inserts today's record. A second insert for the same day violates
// the (user_id, work_date) key and comes back as a conflict.
func (r *PGRepository) CheckIn(ctx context.Context, userID int64, day, at time.Time, notes *string) (*Record, error) {
	const q = `INSERT INTO attendance (user_id, work_date, check_in_time, status, notes)
VALUES ($1, $2, $3, 'present', $4)
RETURNING ` + recordColumns
	rec, err := scanRecord(r.db.QueryRow(ctx, q, userID, pgtype.Date{Time: day, Valid: true}, at.UTC(), notes))
	if err != nil {
		return nil, fmt.Errorf("attendance: check in: %w", db.Translate(err))
	}
	return rec, nil
}

// CheckOut stamps the record unless it was already checked out, in which
// case shared.ErrNotFound is returned.
func (r *PGRepository) CheckOut(ctx context.Context, id int64, at time.Time, hours float64) (*Record, error) {
	const q = `UPDATE attendance SET check_out_time = $2, work_hours = $3
WHERE id = $1 AND check_out_time IS NULL
RETURNING ` + recordColumns
	rec, err := scanRecord(r.db.QueryRow(ctx, q, id, at.UTC(), hours))
	if err != nil {
		return nil, db.Translate(err)
	}
	return rec, nil
}

// History returns the most recent records first.
func (r *PGRepository) History(ctx context.Context, userID int64, limit int) ([]Record, error) {
	rows, err := r.db.Query(ctx, "SELECT "+recordColumns+" FROM attendance WHERE user_id = $1 ORDER BY work_date DESC LIMIT $2", userID, limit)
	if err != nil {
		return nil, fmt.Errorf("attendance: history: %w", db.Translate(err))
	}
	defer rows.Close()
	out := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, db.Translate(err)
		}
		out = append(out, *rec)
	}
	return out, db.Translate(rows.Err())
}

func scanRecord(row pgx.Row) (*Record, error) {
	var (
		rec       Record
		day       pgtype.Date
		in, out   pgtype.Timestamptz
		status    string
		hours     pgtype.Numeric
		notes     pgtype.Text
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &day, &in, &out, &status, &hours, &notes, &createdAt); err != nil {
		return nil, err
	}
	rec.Date = day.Time.Format("2006-01-02")
	if in.Valid {
		t := in.Time
		rec.CheckInTime = &t
	}
	if out.Valid {
		t := out.Time
		rec.CheckOutTime = &t
	}
	rec.Status = Status(status)
	if hours.Valid {
		f, err := hours.Float64Value()
		if err == nil && f.Valid {
			v := f.Float64
			rec.WorkHours = &v
		}
	}
	if notes.Valid {
		rec.Notes = &notes.String
	}
	rec.CreatedAt = createdAt.Time
	return &rec, nil
}

var _ Repository = (*PGRepository)(nil)
