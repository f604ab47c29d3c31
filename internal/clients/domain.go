// Package clients keeps the customer book.
package clients

import "time"

// Status of a client relationship.
type Status string

const (
	StatusActive   Status = "active"
	StatusRenewal  Status = "renewal"
	StatusLead     Status = "lead"
	StatusPitch    Status = "pitch"
	StatusInactive Status = "inactive"
)

// Client is a customer or prospect.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Company   *string   `json:"company,omitempty"`
	Address   *string   `json:"address,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ListFilter narrows listings.
type ListFilter struct {
	Status Status
	Search string
}

// CreateClientRequest is the body of POST /clients.
type CreateClientRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   string  `json:"email" validate:"required,email,max=254"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Company *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Status  string  `json:"status,omitempty" validate:"omitempty,oneof=active renewal lead pitch inactive"`
}

// UpdateClientRequest is the body of PUT /clients/{id}. Nil fields are kept.
type UpdateClientRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Company *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Status  *string `json:"status,omitempty" validate:"omitempty,oneof=active renewal lead pitch inactive"`
}
