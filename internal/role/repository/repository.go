package repository

import (
	"context"

	"servease/backend/internal/role/domain"
)

// Repository defines persistence for roles and permissions.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	// Create inserts the role and links the permissions among permissionIDs that exist.
	Create(ctx context.Context, r *domain.Role, permissionIDs []string) error
	// Update renames the role and replaces its permission set. Returns false if the role does not exist.
	Update(ctx context.Context, id, name string, permissionIDs []string) (bool, error)
	// PermissionsForUser returns the permission names of the user's role; empty when the user has none.
	PermissionsForUser(ctx context.Context, userID string) ([]string, error)
	ListPermissions(ctx context.Context) ([]*domain.Permission, error)
	// EnsurePermission inserts the named permission if missing and returns its id.
	EnsurePermission(ctx context.Context, name, description string) (string, error)
}
