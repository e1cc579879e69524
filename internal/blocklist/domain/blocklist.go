package domain

import "time"

// BlacklistedIP denies every request from IPAddress.
type BlacklistedIP struct {
	ID        string    `json:"id"`
	IPAddress string    `json:"ipAddress"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// BlockedEmail denies signup and signin for Email.
type BlockedEmail struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
