// Package tasks assigns and tracks work items.
package tasks

import "time"

// Status is the lifecycle state of a task. Transitions are unconstrained.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusReassigned Status = "reassigned"
)

// Priority orders tasks for the dashboard tiers.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// DateLayout is the wire format of due dates.
const DateLayout = "2006-01-02"

// Task is a unit of assigned work.
type Task struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     *string    `json:"description,omitempty"`
	AssignedToID    int64      `json:"assignedToId"`
	AssignedToName  string     `json:"assignedToName"`
	AssignedByID    int64      `json:"assignedById"`
	Status          Status     `json:"status"`
	Priority        Priority   `json:"priority"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
	CompletionLevel int        `json:"completionLevel"`
	Notes           *string    `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Involves reports whether userID is the assignee or the assigner.
func (t Task) Involves(userID int64) bool {
	return userID != 0 && (t.AssignedToID == userID || t.AssignedByID == userID)
}

// NewTask is the insert shape.
type NewTask struct {
	Title        string
	Description  *string
	AssignedToID int64
	AssignedByID int64
	Priority     Priority
	DueDate      *time.Time
}

// ListFilter narrows task listings. Participant restricts to tasks the user
// is assigned to or created.
type ListFilter struct {
	Participant *int64
	AssigneeID  *int64
	Status      Status
	Priority    Priority
	Limit       int
	Offset      int
}
