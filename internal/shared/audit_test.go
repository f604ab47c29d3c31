package shared

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExec struct {
	args []any
}

func (r *recordingExec) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	r.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestAuditLoggerStoresOfflineActorAsNull(t *testing.T) {
	exec := &recordingExec{}
	l := NewAuditLogger(exec, nil)

	require.NoError(t, l.Record(context.Background(), AuditLog{ActorID: -1, Action: "leave.approved", Entity: "leave", EntityID: "3"}))
	assert.Nil(t, exec.args[0])

	require.NoError(t, l.Record(context.Background(), AuditLog{ActorID: 12, Action: "leave.approved", Entity: "leave", EntityID: "3"}))
	require.NotNil(t, exec.args[0])
	assert.Equal(t, int64(12), *exec.args[0].(*int64))
}
