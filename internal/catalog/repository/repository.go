package repository

import (
	"context"

	"servease/backend/internal/catalog/domain"
)

// Repository defines persistence for categories and services.
type Repository interface {
	CreateCategory(ctx context.Context, c *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateService(ctx context.Context, s *domain.Service) error
	// GetService returns the service with category and provider details, or nil.
	GetService(ctx context.Context, id string) (*domain.Service, error)
	// Browse returns active services matching f, newest first.
	Browse(ctx context.Context, f domain.Filter) ([]*domain.Service, error)
}
