package domain

import "time"

// Status is the review state of a KYC submission.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// KYC is one identity document submitted by a service provider.
type KYC struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	UserEmail    string    `json:"userEmail,omitempty"`
	DocumentType string    `json:"documentType"`
	DocumentURL  string    `json:"documentUrl"`
	Status       Status    `json:"status"`
	ReviewedBy   string    `json:"reviewedBy,omitempty"`
	ReviewNotes  string    `json:"reviewNotes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
