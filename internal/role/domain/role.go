package domain

import "time"

// Permission names. The permissions table only accepts these.
const (
	PermUserRead       = "USER_READ"
	PermUserWrite      = "USER_WRITE"
	PermKYCApprove     = "KYC_APPROVE"
	PermSystemSecurity = "SYSTEM_SECURITY"
)

// AllPermissions lists every permission name, in seed order.
var AllPermissions = []string{PermUserRead, PermUserWrite, PermKYCApprove, PermSystemSecurity}

// Permission is a named capability granted through roles.
type Permission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Role groups permissions; a user holds at most one role.
type Role struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Permissions []*Permission `json:"permissions"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// PermissionNames returns the names of r's permissions.
func (r *Role) PermissionNames() []string {
	out := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		out = append(out, p.Name)
	}
	return out
}
