// Package blocklist manages the IP and email blocklists enforced by the HTTP middleware.
package blocklist

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"servease/backend/internal/blocklist/domain"
	"servease/backend/internal/db"
)

var (
	ErrIPAlreadyBlacklisted = errors.New("ip already blacklisted")
	ErrEmailAlreadyBlocked  = errors.New("email already blocked")
)

// Store is the persistence the Service writes through.
type Store interface {
	AddIP(ctx context.Context, e *domain.BlacklistedIP) error
	AddEmail(ctx context.Context, e *domain.BlockedEmail) error
}

// Service adds blocklist entries.
type Service struct {
	store Store
}

// NewService returns a blocklist Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// BlacklistIP lists ip. Listing the same address twice returns ErrIPAlreadyBlacklisted.
func (s *Service) BlacklistIP(ctx context.Context, ip, reason string) (*domain.BlacklistedIP, error) {
	e := &domain.BlacklistedIP{
		ID:        uuid.New().String(),
		IPAddress: strings.TrimSpace(ip),
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.AddIP(ctx, e); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrIPAlreadyBlacklisted
		}
		return nil, err
	}
	return e, nil
}

// BlockEmail lists email, lower-cased. Listing it twice returns ErrEmailAlreadyBlocked.
func (s *Service) BlockEmail(ctx context.Context, email, reason string) (*domain.BlockedEmail, error) {
	e := &domain.BlockedEmail{
		ID:        uuid.New().String(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.AddEmail(ctx, e); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailAlreadyBlocked
		}
		return nil, err
	}
	return e, nil
}
