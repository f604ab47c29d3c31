// Package audit serves the activity timeline recorded by shared.AuditLogger.
package audit

import (
	"context"
	"fmt"

	"github.com/officehub/officehub/internal/shared"
)

// Service pages through audit entries.
type Service struct {
	repo Repository
}

// NewService builds the timeline service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline returns one page of entries, newest first.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	if !filters.From.IsZero() && !filters.To.IsZero() && filters.To.Before(filters.From) {
		return Result{}, shared.Invalid("to must not be before from")
	}
	page, size, offset, limit := filters.window()
	rows, err := s.repo.Timeline(ctx, filters, offset, limit)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(rows) > size
	if hasNext {
		rows = rows[:size]
	}
	paging := PagingInfo{Page: page, PageSize: size, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Rows: rows, Paging: paging}, nil
}
