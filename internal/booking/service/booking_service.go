// Package service implements booking creation, listing and status changes.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"servease/backend/internal/booking/domain"
	catalogdomain "servease/backend/internal/catalog/domain"
	paymentdomain "servease/backend/internal/payment/domain"
	userdomain "servease/backend/internal/user/domain"
)

var (
	ErrServiceNotFound = errors.New("service not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrInvalidStatus   = errors.New("invalid booking status")
	ErrAddressRequired = errors.New("address is required")
)

// ListType selects which side of the booking the caller lists.
type ListType string

const (
	ListAsCustomer ListType = "customer"
	ListAsProvider ListType = "provider"
)

// Repo is the booking persistence used by BookingService.
type Repo interface {
	Create(ctx context.Context, b *domain.Booking, p *paymentdomain.Payment) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Booking, error)
	ListByProvider(ctx context.Context, providerID string) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
}

// ServiceGetter loads the booked service.
type ServiceGetter interface {
	GetService(ctx context.Context, id string) (*catalogdomain.Service, error)
}

// UserGetter loads the booking customer.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// BookingService manages bookings. Only participants can read or change a booking; anyone else
// sees ErrBookingNotFound.
type BookingService struct {
	repo     Repo
	services ServiceGetter
	users    UserGetter
	now      func() time.Time
}

// NewBookingService returns a BookingService.
func NewBookingService(repo Repo, services ServiceGetter, users UserGetter) *BookingService {
	return &BookingService{repo: repo, services: services, users: users, now: func() time.Time { return time.Now().UTC() }}
}

// Create books serviceID for customerID and opens a PENDING payment for the service price.
func (s *BookingService) Create(ctx context.Context, customerID, serviceID string, schedule time.Time, address string) (*domain.Booking, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrAddressRequired
	}
	svc, err := s.services.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}
	cityID := svc.CityID
	if cityID == "" {
		customer, err := s.users.GetByID(ctx, customerID)
		if err != nil {
			return nil, err
		}
		if customer != nil {
			cityID = customer.CityID
		}
	}
	now := s.now()
	b := &domain.Booking{
		ID:           uuid.New().String(),
		ServiceID:    svc.ID,
		ServiceTitle: svc.Title,
		CustomerID:   customerID,
		ProviderID:   svc.ProviderID,
		Schedule:     schedule.UTC(),
		Address:      address,
		CityID:       cityID,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	p := &paymentdomain.Payment{
		ID:         uuid.New().String(),
		BookingID:  b.ID,
		Amount:     svc.Price,
		Currency:   paymentdomain.DefaultCurrency,
		Status:     paymentdomain.StatusPending,
		CustomerID: b.CustomerID,
		ProviderID: b.ProviderID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, b, p); err != nil {
		return nil, err
	}
	b.Payment = p
	return b, nil
}

// List returns the caller's bookings newest first. Any type other than provider lists as customer.
func (s *BookingService) List(ctx context.Context, userID string, typ ListType) ([]*domain.Booking, error) {
	if typ == ListAsProvider {
		return s.repo.ListByProvider(ctx, userID)
	}
	return s.repo.ListByCustomer(ctx, userID)
}

// Get returns the booking if userID participates in it.
func (s *BookingService) Get(ctx context.Context, userID, id string) (*domain.Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil || !b.IsParticipant(userID) {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

// UpdateStatus changes the status of a booking userID participates in.
func (s *BookingService) UpdateStatus(ctx context.Context, userID, id string, status domain.Status) (*domain.Booking, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	b.Status = status
	b.UpdatedAt = s.now()
	return b, nil
}
