// Package service implements KYC submission and review.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"servease/backend/internal/kyc/domain"
	userdomain "servease/backend/internal/user/domain"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrNotProvider       = errors.New("only service providers can submit KYC")
	ErrKYCNotFound       = errors.New("KYC not found")
	ErrInvalidSubmission = errors.New("document type and url are required")
)

// Repo is the KYC persistence used by KYCService.
type Repo interface {
	Create(ctx context.Context, k *domain.KYC) error
	ListByUser(ctx context.Context, userID string) ([]*domain.KYC, error)
	ListAll(ctx context.Context) ([]*domain.KYC, error)
	Review(ctx context.Context, id string, status domain.Status, reviewerID, notes string) (*domain.KYC, error)
}

// UserGetter loads the submitting user.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// Notifier tells the provider about a decision.
type Notifier interface {
	SendKYCNotification(ctx context.Context, email, status, notes string) error
}

// KYCService handles provider submissions and admin decisions.
type KYCService struct {
	repo     Repo
	users    UserGetter
	notifier Notifier
}

// NewKYCService returns a KYCService. notifier may be nil.
func NewKYCService(repo Repo, users UserGetter, notifier Notifier) *KYCService {
	return &KYCService{repo: repo, users: users, notifier: notifier}
}

// Submit records a PENDING submission for a provider account.
func (s *KYCService) Submit(ctx context.Context, userID, documentType, documentURL string) (*domain.KYC, error) {
	documentType, documentURL = strings.TrimSpace(documentType), strings.TrimSpace(documentURL)
	if documentType == "" || documentURL == "" {
		return nil, ErrInvalidSubmission
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if !u.AccountType.IsProvider() {
		return nil, ErrNotProvider
	}
	now := time.Now().UTC()
	k := &domain.KYC{
		ID:           uuid.New().String(),
		UserID:       userID,
		UserEmail:    u.Email,
		DocumentType: documentType,
		DocumentURL:  documentURL,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, k); err != nil {
		return nil, err
	}
	return k, nil
}

// Status returns the caller's submissions newest first.
func (s *KYCService) Status(ctx context.Context, userID string) ([]*domain.KYC, error) {
	return s.repo.ListByUser(ctx, userID)
}

// List returns every submission newest first.
func (s *KYCService) List(ctx context.Context) ([]*domain.KYC, error) {
	return s.repo.ListAll(ctx)
}

// Approve marks the submission APPROVED, activates its user and emails them.
func (s *KYCService) Approve(ctx context.Context, id, reviewerID, notes string) (*domain.KYC, error) {
	return s.review(ctx, id, domain.StatusApproved, reviewerID, notes)
}

// Reject marks the submission REJECTED and emails the user. The account status is unchanged.
func (s *KYCService) Reject(ctx context.Context, id, reviewerID, notes string) (*domain.KYC, error) {
	return s.review(ctx, id, domain.StatusRejected, reviewerID, notes)
}

func (s *KYCService) review(ctx context.Context, id string, status domain.Status, reviewerID, notes string) (*domain.KYC, error) {
	k, err := s.repo.Review(ctx, id, status, reviewerID, strings.TrimSpace(notes))
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, ErrKYCNotFound
	}
	s.notify(ctx, k)
	return k, nil
}

func (s *KYCService) notify(ctx context.Context, k *domain.KYC) {
	if s.notifier == nil || k.UserEmail == "" {
		return
	}
	if err := s.notifier.SendKYCNotification(ctx, k.UserEmail, strings.ToLower(string(k.Status)), k.ReviewNotes); err != nil {
		zap.L().Warn("kyc: notification failed", zap.String("kyc_id", k.ID), zap.Error(err))
	}
}
