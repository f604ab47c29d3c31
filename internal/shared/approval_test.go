package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureAudit struct{ logs []AuditLog }

func (c *captureAudit) Record(_ context.Context, l AuditLog) error {
	c.logs = append(c.logs, l)
	return nil
}

func TestParseApprovalStatus(t *testing.T) {
	s, err := ParseApprovalStatus(" Approved ")
	require.NoError(t, err)
	assert.Equal(t, ApprovalApproved, s)
	assert.True(t, s.Decided())
	assert.False(t, ApprovalPending.Decided())

	_, err = ParseApprovalStatus("maybe")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecordApproval(t *testing.T) {
	audit := &captureAudit{}
	err := RecordApproval(context.Background(), audit, ApprovalDecision{Module: "leave", RefID: 9, ActorID: 1, Status: ApprovalRejected, Note: "overlaps"}, nil)
	require.NoError(t, err)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, "leave.rejected", audit.logs[0].Action)
	assert.Equal(t, "9", audit.logs[0].EntityID)
	assert.Equal(t, "overlaps", audit.logs[0].Meta["note"])

	assert.Error(t, RecordApproval(context.Background(), audit, ApprovalDecision{Module: "leave"}, nil))
	assert.Error(t, RecordApproval(context.Background(), nil, ApprovalDecision{Module: "leave", RefID: 1}, nil))
}
