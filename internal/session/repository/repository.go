package repository

import (
	"context"

	"servease/backend/internal/session/domain"
)

// Repository defines persistence for refresh tokens.
type Repository interface {
	Create(ctx context.Context, t *domain.RefreshToken) error
	GetByID(ctx context.Context, id string) (*domain.RefreshToken, error)
	// RevokeIfActive revokes the record only if it is not yet revoked. It returns false when
	// another caller revoked it first.
	RevokeIfActive(ctx context.Context, id string) (bool, error)
	// RevokeAllByUser revokes every non-revoked record of the user and returns how many changed.
	RevokeAllByUser(ctx context.Context, userID string) (int64, error)
}
