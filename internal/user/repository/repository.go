package repository

import (
	"context"

	"servease/backend/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// UpdateStatus sets the account status. It returns false when no user has the id.
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) (bool, error)
	List(ctx context.Context, limit, offset int32) ([]*domain.User, error)
}
