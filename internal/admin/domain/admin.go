package domain

import "time"

// UserRole is the role attached to a user in admin listings.
type UserRole struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// UserSummary is a user as shown on the admin console. It never carries the password hash.
type UserSummary struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name,omitempty"`
	AccountType   string    `json:"accountType"`
	AccountStatus string    `json:"accountStatus"`
	TenantID      string    `json:"tenantId,omitempty"`
	CityID        string    `json:"cityId,omitempty"`
	Role          *UserRole `json:"role"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Metrics are the dashboard counters.
type Metrics struct {
	TotalUsers       int64 `json:"totalUsers" db:"total_users"`
	ActiveUsers      int64 `json:"activeUsers" db:"active_users"`
	PendingKYC       int64 `json:"pendingKyc" db:"pending_kyc"`
	ServiceProviders int64 `json:"serviceProviders" db:"service_providers"`
	Bookings         int64 `json:"bookings" db:"bookings"`
	Tenants          int64 `json:"tenants" db:"tenants"`
}
