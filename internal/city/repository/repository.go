package repository

import (
	"context"

	"servease/backend/internal/city/domain"
)

// Repository defines persistence for cities.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.City, error)
	// List returns cities by name; a non-empty region filters to that region.
	List(ctx context.Context, region string) ([]*domain.City, error)
	Create(ctx context.Context, c *domain.City) error
}
