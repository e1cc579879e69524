package repository

import (
	"context"

	"servease/backend/internal/otp/domain"
)

// Repository defines persistence for OTP records.
type Repository interface {
	Create(ctx context.Context, o *domain.OTP) error
	// FindLatestUnused returns the newest unused record for (userID, codeHash, purpose), or nil.
	FindLatestUnused(ctx context.Context, userID, codeHash string, purpose domain.Purpose) (*domain.OTP, error)
	// MarkUsed consumes the record. It returns false when the record was already used.
	MarkUsed(ctx context.Context, id string) (bool, error)
}
