package db

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/officehub/officehub/internal/shared"
)

// Translate maps driver errors onto the shared error kinds. Repositories call
// it on every error leaving the store so pg codes never reach handlers.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", shared.ErrConflict, conflictDetail(pgErr))
		case "23503":
			return fmt.Errorf("%w: referenced record does not exist", shared.ErrValidation)
		case "23514", "22P02", "22007", "22008":
			return fmt.Errorf("%w: value is out of range or malformed", shared.ErrValidation)
		case "57P01", "57P02", "57P03", "08000", "08003", "08006", "08001", "08004":
			return fmt.Errorf("%w: %w", shared.ErrStoreUnavailable, err)
		}
		return err
	}

	if IsConnectionError(err) {
		return fmt.Errorf("%w: %w", shared.ErrStoreUnavailable, err)
	}
	return err
}

// IsConnectionError reports failures to reach the server at all.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) && pgconn.Timeout(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func conflictDetail(pgErr *pgconn.PgError) string {
	name := pgErr.ConstraintName
	switch {
	case strings.Contains(name, "employee_id"):
		return "employee id already exists"
	case strings.Contains(name, "username"):
		return "username already exists"
	case strings.Contains(name, "email"):
		return "email already exists"
	default:
		return "duplicate value"
	}
}
