package domain

import "time"

// Purpose scopes an OTP to the flow that issued it.
type Purpose string

const (
	PurposeSignup Purpose = "signup"
	PurposeSignin Purpose = "signin"
)

// Valid reports whether p is a known purpose.
func (p Purpose) Valid() bool {
	return p == PurposeSignup || p == PurposeSignin
}

// OTP is an issued one-time code. Only the SHA-256 of the code is stored (otps table).
type OTP struct {
	ID        string
	UserID    string
	CodeHash  string
	Purpose   Purpose
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Expired reports whether the code is past its expiry at now.
func (o *OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
