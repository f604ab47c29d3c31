package shared

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
)

// ApprovalStatus is the review state of leave requests and expenses.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ParseApprovalStatus accepts the three statuses case-insensitively.
func ParseApprovalStatus(raw string) (ApprovalStatus, error) {
	switch s := ApprovalStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return s, nil
	default:
		return "", Invalid("status must be one of pending, approved, rejected")
	}
}

// Decided reports whether the status carries an approver.
func (s ApprovalStatus) Decided() bool {
	return s == ApprovalApproved || s == ApprovalRejected
}

// ApprovalDecision is a reviewer's verdict on a request.
type ApprovalDecision struct {
	Module  string
	RefID   int64
	ActorID int64
	Status  ApprovalStatus
	Note    string
	At      time.Time
}

// RecordApproval writes the decision to the audit trail as "<module>.<status>".
func RecordApproval(ctx context.Context, audit AuditRecorder, d ApprovalDecision, meta map[string]any) error {
	if audit == nil {
		return errors.New("approval recorder not initialised")
	}
	if d.Module == "" {
		return errors.New("approval module required")
	}
	if d.RefID == 0 {
		return errors.New("approval ref id required")
	}
	if meta == nil {
		meta = map[string]any{}
	}
	if d.Note != "" {
		meta["note"] = d.Note
	}
	return audit.Record(ctx, AuditLog{
		ActorID:  d.ActorID,
		Action:   d.Module + "." + string(d.Status),
		Entity:   d.Module,
		EntityID: strconv.FormatInt(d.RefID, 10),
		Meta:     meta,
		At:       d.At,
	})
}
