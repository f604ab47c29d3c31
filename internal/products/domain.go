// Package products is the insurance product catalogue.
package products

import (
	"strings"
	"time"
)

// Category of an insurance product.
type Category string

const (
	CategoryLife     Category = "life"
	CategoryHealth   Category = "health"
	CategoryMotor    Category = "motor"
	CategoryTravel   Category = "travel"
	CategoryHome     Category = "home"
	CategoryBusiness Category = "business"
)

const (
	// DefaultDuration applies when none is given.
	DefaultDuration = "1 Year"
	shortLimit      = 120
)

// Product is a catalogue entry.
type Product struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Category         Category  `json:"category"`
	Description      string    `json:"description"`
	ShortDescription string    `json:"shortDescription"`
	PremiumStarting  *float64  `json:"premiumStarting,omitempty"`
	CoverageAmount   *float64  `json:"coverageAmount,omitempty"`
	Duration         string    `json:"duration"`
	Features         []string  `json:"features"`
	Terms            *string   `json:"terms,omitempty"`
	IsActive         bool      `json:"isActive"`
	CreatedByID      *int64    `json:"createdById,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ShortDescription derives a teaser from the first 120 characters.
func ShortDescription(description string) string {
	runes := []rune(strings.TrimSpace(description))
	if len(runes) > shortLimit {
		runes = runes[:shortLimit]
	}
	return string(runes) + "..."
}

// CreateProductRequest is the body of POST /products.
type CreateProductRequest struct {
	Name             string   `json:"name" validate:"required,max=200"`
	Category         string   `json:"category" validate:"required,oneof=life health motor travel home business"`
	Description      string   `json:"description" validate:"required,max=5000"`
	ShortDescription string   `json:"shortDescription,omitempty" validate:"max=300"`
	PremiumStarting  float64  `json:"premiumStarting" validate:"required,gt=0"`
	CoverageAmount   float64  `json:"coverageAmount" validate:"required,gt=0"`
	Duration         string   `json:"duration,omitempty" validate:"max=50"`
	Features         []string `json:"features,omitempty" validate:"omitempty,max=50,dive,required,max=200"`
	Terms            *string  `json:"terms,omitempty" validate:"omitempty,max=10000"`
}

// UpdateProductRequest is the body of PUT /products/{id}. Nil fields are kept.
type UpdateProductRequest struct {
	Name             *string   `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Category         *string   `json:"category,omitempty" validate:"omitempty,oneof=life health motor travel home business"`
	Description      *string   `json:"description,omitempty" validate:"omitempty,min=1,max=5000"`
	ShortDescription *string   `json:"shortDescription,omitempty" validate:"omitempty,max=300"`
	PremiumStarting  *float64  `json:"premiumStarting,omitempty" validate:"omitempty,gt=0"`
	CoverageAmount   *float64  `json:"coverageAmount,omitempty" validate:"omitempty,gt=0"`
	Duration         *string   `json:"duration,omitempty" validate:"omitempty,min=1,max=50"`
	Features         *[]string `json:"features,omitempty"`
	Terms            *string   `json:"terms,omitempty" validate:"omitempty,max=10000"`
	IsActive         *bool     `json:"isActive,omitempty"`
}

// ListFilter narrows listings.
type ListFilter struct {
	Category   Category
	ActiveOnly bool
}
