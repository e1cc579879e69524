package repository

import (
	"context"

	"servease/backend/internal/tenant/domain"
)

// Repository defines persistence for tenants.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	List(ctx context.Context) ([]*domain.Tenant, error)
	Create(ctx context.Context, t *domain.Tenant) error
	TenantExists(ctx context.Context, id string) (bool, error)
	ActiveTenantIDBySubdomain(ctx context.Context, subdomain string) (string, error)
}
