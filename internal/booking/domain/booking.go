package domain

import (
	"time"

	paymentdomain "servease/backend/internal/payment/domain"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Booking is a customer's appointment for a provider's service.
type Booking struct {
	ID           string                 `json:"id"`
	ServiceID    string                 `json:"serviceId"`
	ServiceTitle string                 `json:"serviceTitle,omitempty"`
	CustomerID   string                 `json:"customerId"`
	ProviderID   string                 `json:"providerId"`
	Schedule     time.Time              `json:"schedule"`
	Address      string                 `json:"address"`
	CityID       string                 `json:"cityId,omitempty"`
	Status       Status                 `json:"status"`
	Payment      *paymentdomain.Payment `json:"payment,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
}

// IsParticipant reports whether userID is the booking's customer or provider.
func (b *Booking) IsParticipant(userID string) bool {
	return userID != "" && (b.CustomerID == userID || b.ProviderID == userID)
}
