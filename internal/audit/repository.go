package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/officehub/officehub/internal/platform/db"
)

// Repository reads audit_logs.
type Repository interface {
	Timeline(ctx context.Context, filters TimelineFilters, offset, limit int) ([]TimelineRow, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db db.DBTX
}

// NewRepository constructs a repository.
func NewRepository(conn db.DBTX) *PGRepository {
	return &PGRepository{db: conn}
}

const timelineSQL = `SELECT a.id, a.occurred_at, a.actor_id,
       COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.email, 'system') AS actor_name,
       a.action, a.entity, a.entity_id, a.meta
FROM audit_logs a
LEFT JOIN users u ON u.id = a.actor_id
WHERE ($1::timestamptz IS NULL OR a.occurred_at >= $1)
  AND ($2::timestamptz IS NULL OR a.occurred_at < $2)
  AND ($3::bigint IS NULL OR a.actor_id = $3)
  AND ($4::text IS NULL OR a.entity = $4)
  AND ($5::text IS NULL OR a.action LIKE $5 || '%')
ORDER BY a.occurred_at DESC, a.id DESC
OFFSET $6 LIMIT $7`

// Timeline returns audit rows newest first.
func (r *PGRepository) Timeline(ctx context.Context, f TimelineFilters, offset, limit int) ([]TimelineRow, error) {
	var actor pgtype.Int8
	if f.ActorID != nil {
		actor = pgtype.Int8{Int64: *f.ActorID, Valid: true}
	}
	rows, err := r.db.Query(ctx, timelineSQL, toPgTime(f.From), toPgTime(f.To), actor,
		optionalText(f.Entity), optionalText(f.Action), offset, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: timeline: %w", db.Translate(err))
	}
	defer rows.Close()

	out := make([]TimelineRow, 0, limit)
	for rows.Next() {
		var (
			row     TimelineRow
			at      pgtype.Timestamptz
			actorID pgtype.Int8
			meta    []byte
		)
		if err := rows.Scan(&row.ID, &at, &actorID, &row.ActorName, &row.Action, &row.Entity, &row.EntityID, &meta); err != nil {
			return nil, db.Translate(err)
		}
		row.At = at.Time
		if actorID.Valid {
			id := actorID.Int64
			row.ActorID = &id
		}
		if len(meta) > 0 && string(meta) != "null" {
			if err := json.Unmarshal(meta, &row.Meta); err != nil {
				return nil, fmt.Errorf("audit: decode meta: %w", err)
			}
		}
		out = append(out, row)
	}
	return out, db.Translate(rows.Err())
}

func toPgTime(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func optionalText(value string) pgtype.Text {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: trimmed, Valid: true}
}

var _ Repository = (*PGRepository)(nil)
