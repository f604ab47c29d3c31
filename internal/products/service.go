package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/officehub/officehub/internal/shared"
)

const maxFeatures = 50

// Service manages the product catalogue.
type Service struct {
	repo Repository
}

// NewService constructs the service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns products. Callers without products.write only see active ones.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	return s.repo.List(ctx, filter)
}

// Get loads a single product.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.Get(ctx, id)
}

// Create adds a product on behalf of p.
func (s *Service) Create(ctx context.Context, p shared.Principal, req CreateProductRequest) (*Product, error) {
	product := Product{
		Name:             strings.TrimSpace(req.Name),
		Category:         Category(req.Category),
		Description:      strings.TrimSpace(req.Description),
		ShortDescription: strings.TrimSpace(req.ShortDescription),
		PremiumStarting:  &req.PremiumStarting,
		CoverageAmount:   &req.CoverageAmount,
		Duration:         strings.TrimSpace(req.Duration),
		Features:         cleanFeatures(req.Features),
		Terms:            req.Terms,
		IsActive:         true,
	}
	if product.ShortDescription == "" {
		product.ShortDescription = ShortDescription(product.Description)
	}
	if product.Duration == "" {
		product.Duration = DefaultDuration
	}
	if p.UserID > 0 {
		id := p.UserID
		product.CreatedByID = &id
	}
	out, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("products: create: %w", err)
	}
	return out, nil
}

// Update changes the supplied fields.
func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (*Product, error) {
	updates := make(map[string]any)
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(*req.Description)
	}
	if req.ShortDescription != nil {
		updates["short_description"] = strings.TrimSpace(*req.ShortDescription)
	}
	if req.PremiumStarting != nil {
		updates["premium_starting"] = *req.PremiumStarting
	}
	if req.CoverageAmount != nil {
		updates["coverage_amount"] = *req.CoverageAmount
	}
	if req.Duration != nil {
		updates["duration"] = strings.TrimSpace(*req.Duration)
	}
	if req.Features != nil {
		if len(*req.Features) > maxFeatures {
			return nil, shared.Invalid("features must contain at most %d items", maxFeatures)
		}
		updates["features"] = cleanFeatures(*req.Features)
	}
	if req.Terms != nil {
		updates["terms"] = *req.Terms
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	out, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, fmt.Errorf("products: update: %w", err)
	}
	return out, nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func cleanFeatures(in []string) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
