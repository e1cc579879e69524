// Package service exposes payments to the participants of their booking.
package service

import (
	"context"
	"errors"

	"servease/backend/internal/payment/domain"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrInvalidStatus   = errors.New("invalid payment status")
)

// Repo is the payment persistence used by PaymentService.
type Repo interface {
	GetByBookingID(ctx context.Context, bookingID string) (*domain.Payment, error)
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status, paymentIntentID, transactionID string) error
}

// PaymentService reads and updates payments. Callers who are not participants of the booking
// see ErrPaymentNotFound.
type PaymentService struct {
	repo Repo
}

// NewPaymentService returns a PaymentService.
func NewPaymentService(repo Repo) *PaymentService {
	return &PaymentService{repo: repo}
}

// ForBooking returns the booking's payment.
func (s *PaymentService) ForBooking(ctx context.Context, userID, bookingID string) (*domain.Payment, error) {
	p, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsParticipant(userID) {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

// CreateIntent describes the amount to collect for the booking.
func (s *PaymentService) CreateIntent(ctx context.Context, userID, bookingID string) (*domain.Intent, error) {
	p, err := s.ForBooking(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	return &domain.Intent{Amount: p.Amount, Currency: p.Currency, BookingID: p.BookingID}, nil
}

// UpdateStatus sets the payment status and optional processor ids.
func (s *PaymentService) UpdateStatus(ctx context.Context, userID, paymentID string, status domain.Status, paymentIntentID, transactionID string) (*domain.Payment, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	p, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p == nil || !p.IsParticipant(userID) {
		return nil, ErrPaymentNotFound
	}
	if err := s.repo.UpdateStatus(ctx, paymentID, status, paymentIntentID, transactionID); err != nil {
		return nil, err
	}
	p.Status = status
	if paymentIntentID != "" {
		p.PaymentIntentID = paymentIntentID
	}
	if transactionID != "" {
		p.TransactionID = transactionID
	}
	return p, nil
}
