// Package query implements the C8 query surface: pure, stateless
// derivations of the denormalized incident list, the incident graph,
// and map markers, consumed by the HTTP layer's read endpoints.
package query

import (
	"context"
	"fmt"

	"blotter/internal/repository"
)

// defaultLimit bounds the result size of Incidents when the caller
// passes limit <= 0.
const defaultLimit = 50

// Service provides read-only derivations over the article store, per
// spec §4.8. Unlike refresh.Service, it never mutates the store.
type Service struct {
	Articles repository.ArticleRepository
}

// NewService constructs a query Service over the given read side.
func NewService(articles repository.ArticleRepository) *Service {
	return &Service{Articles: articles}
}

// Incidents returns the region's enriched incidents newest-first, each
// joined with its source and raw article per spec §4.8's denormalized
// projection.
func (s *Service) Incidents(ctx context.Context, region string, limit int) ([]repository.IncidentRow, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.Articles.ListIncidents(ctx, region, limit)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	return rows, nil
}
