package repository

import (
	"context"

	"servease/backend/internal/kyc/domain"
)

// Repository defines persistence for KYC submissions.
type Repository interface {
	Create(ctx context.Context, k *domain.KYC) error
	// ListByUser returns the user's submissions newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.KYC, error)
	// ListAll returns every submission newest first, with UserEmail filled.
	ListAll(ctx context.Context) ([]*domain.KYC, error)
	// Review records a decision. When status is APPROVED the submitting user becomes ACTIVE in
	// the same transaction. Returns nil when no submission has id.
	Review(ctx context.Context, id string, status domain.Status, reviewerID, notes string) (*domain.KYC, error)
}
