package clients

import (
	"context"
	"fmt"
	"strings"
)

// Service manages clients.
type Service struct {
	repo Repository
}

// NewService constructs the service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns clients.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Client, error) {
	return s.repo.List(ctx, filter)
}

// Create adds a client. Status defaults to lead.
func (s *Service) Create(ctx context.Context, req CreateClientRequest) (*Client, error) {
	status := StatusLead
	if req.Status != "" {
		status = Status(req.Status)
	}
	c, err := s.repo.Create(ctx, Client{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   req.Phone,
		Company: req.Company,
		Address: req.Address,
		Status:  status,
	})
	if err != nil {
		return nil, fmt.Errorf("clients: create: %w", err)
	}
	return c, nil
}

// Update changes the supplied fields.
func (s *Service) Update(ctx context.Context, id int64, req UpdateClientRequest) (*Client, error) {
	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Company != nil {
		updates["company"] = *req.Company
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	c, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, fmt.Errorf("clients: update: %w", err)
	}
	return c, nil
}

// Delete removes a client.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
