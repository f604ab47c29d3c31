package db

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the embedded DDL.
func Schema() string { return schemaSQL }

// EnsureSchema applies the idempotent DDL. Exec without arguments goes through
// the simple protocol, so the whole file runs as one batch.
func EnsureSchema(ctx context.Context, conn DBTX) error {
	if _, err := conn.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("platform/db: ensure schema: %w", Translate(err))
	}
	return nil
}
