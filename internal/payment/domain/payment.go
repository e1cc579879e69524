package domain

import "time"

// Status is the settlement state of a payment.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusRefunded   Status = "REFUNDED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// DefaultCurrency is used for every payment created with a booking.
const DefaultCurrency = "USD"

// Payment settles one booking. CustomerID and ProviderID are the booking's participants,
// loaded for access checks and never serialized.
type Payment struct {
	ID              string    `json:"id"`
	BookingID       string    `json:"bookingId"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	Status          Status    `json:"status"`
	PaymentIntentID string    `json:"paymentIntentId,omitempty"`
	TransactionID   string    `json:"transactionId,omitempty"`
	CustomerID      string    `json:"-"`
	ProviderID      string    `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// IsParticipant reports whether userID is the booking's customer or provider.
func (p *Payment) IsParticipant(userID string) bool {
	return userID != "" && (p.CustomerID == userID || p.ProviderID == userID)
}

// Intent is returned when a client asks to start a payment. No processor is wired, so
// PaymentIntentID is always null.
type Intent struct {
	PaymentIntentID *string `json:"paymentIntentId"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	BookingID       string  `json:"bookingId"`
}
