package tasks

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Title        string  `json:"title" validate:"required,max=200"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=4000"`
	AssignedToID int64   `json:"assignedToId" validate:"required,gt=0"`
	Priority     string  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high critical"`
	DueDate      *string `json:"dueDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateStatusRequest is the body of PUT /tasks/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed reassigned"`
}

// ProgressRequest is the body of PUT /tasks/{id}/progress.
type ProgressRequest struct {
	CompletionLevel *int    `json:"completionLevel" validate:"required,min=0,max=100"`
	Notes           *string `json:"notes,omitempty" validate:"omitempty,max=4000"`
}

// ReassignRequest is the body of PUT /tasks/{id}/reassign.
type ReassignRequest struct {
	AssignedToID int64   `json:"assignedToId" validate:"required,gt=0"`
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=4000"`
}
