// Package expenses handles expense claims, their approval and export.
package expenses

import (
	"time"

	"github.com/officehub/officehub/internal/shared"
)

// DateLayout is the wire format of expense dates.
const DateLayout = "2006-01-02"

// MaxAmount is the largest amount numeric(10,2) holds.
const MaxAmount = 99999999.99

// Expense is a reimbursement claim.
type Expense struct {
	ID           int64                 `json:"id"`
	UserID       int64                 `json:"userId"`
	UserName     string                `json:"userName"`
	Amount       float64               `json:"amount"`
	Category     string                `json:"category"`
	Description  string                `json:"description"`
	Date         string                `json:"date"`
	ReceiptURL   *string               `json:"receiptUrl,omitempty"`
	Status       shared.ApprovalStatus `json:"status"`
	ApprovedByID *int64                `json:"approvedById,omitempty"`
	ApprovedAt   *time.Time            `json:"approvedAt,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// NewExpense is the insert shape.
type NewExpense struct {
	UserID      int64
	Amount      float64
	Category    string
	Description string
	Date        time.Time
	ReceiptURL  *string
}

// ListFilter narrows listings. UserID nil lists everyone.
type ListFilter struct {
	UserID *int64
	Status shared.ApprovalStatus
	From   *time.Time
	To     *time.Time
}

// CreateExpenseRequest is the body of POST /expenses.
type CreateExpenseRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0,lte=99999999.99"`
	Category    string  `json:"category" validate:"required,max=100"`
	Description string  `json:"description" validate:"max=2000"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	ReceiptURL  *string `json:"receiptUrl,omitempty" validate:"omitempty,url,max=2048"`
}

// UpdateStatusRequest is the body of PUT /expenses/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
	Note   string `json:"note,omitempty" validate:"max=1000"`
}
