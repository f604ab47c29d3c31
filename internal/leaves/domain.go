// Package leaves handles leave requests and their approval.
package leaves

import (
	"time"

	"github.com/officehub/officehub/internal/shared"
)

// Type of leave.
type Type string

const (
	TypeSick      Type = "sick"
	TypeCasual    Type = "casual"
	TypeVacation  Type = "vacation"
	TypeEmergency Type = "emergency"
	TypeOther     Type = "other"
)

// DateLayout is the wire format of leave dates.
const DateLayout = "2006-01-02"

// Leave is a request for time off.
type Leave struct {
	ID           int64                 `json:"id"`
	UserID       int64                 `json:"userId"`
	UserName     string                `json:"userName"`
	Type         Type                  `json:"type"`
	StartDate    string                `json:"startDate"`
	EndDate      string                `json:"endDate"`
	Days         int                   `json:"days"`
	Reason       string                `json:"reason"`
	Status       shared.ApprovalStatus `json:"status"`
	ApprovedByID *int64                `json:"approvedById,omitempty"`
	ApprovedAt   *time.Time            `json:"approvedAt,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// InclusiveDays counts calendar days from start to end, both included. An
// end before start is rejected.
func InclusiveDays(start, end time.Time) (int, error) {
	s := dayOf(start)
	e := dayOf(end)
	if e.Before(s) {
		return 0, shared.Invalid("endDate must not be before startDate")
	}
	return int(e.Sub(s).Hours()/24) + 1, nil
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewLeave is the insert shape.
type NewLeave struct {
	UserID    int64
	Type      Type
	StartDate time.Time
	EndDate   time.Time
	Days      int
	Reason    string
}

// ListFilter narrows listings. UserID nil lists everyone.
type ListFilter struct {
	UserID *int64
	Status shared.ApprovalStatus
}

// CreateLeaveRequest is the body of POST /leaves.
type CreateLeaveRequest struct {
	Type      string `json:"type" validate:"required,oneof=sick casual vacation emergency other"`
	StartDate string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" validate:"max=2000"`
}

// UpdateStatusRequest is the body of PUT /leaves/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
	Note   string `json:"note,omitempty" validate:"max=1000"`
}
