// Package rbac holds the route permission table and the HTTP guards that enforce account status,
// account type and permissions.
package rbac

import (
	"strings"

	roledomain "servease/backend/internal/role/domain"
)

// RoutePermissions maps "METHOD /pattern" (chi pattern, without the /api/v1 prefix) to the
// permissions that grant access. Holding any one of them is enough.
var RoutePermissions = map[string][]string{
	"GET /admin/users":               {roledomain.PermUserRead},
	"PATCH /admin/users/{id}/status": {roledomain.PermUserWrite},
	"POST /admin/roles":              {roledomain.PermUserWrite},
	"PATCH /admin/roles/{id}":        {roledomain.PermUserWrite},
	"GET /admin/kyc":                 {roledomain.PermKYCApprove},
	"PATCH /admin/kyc/{id}/approve":  {roledomain.PermKYCApprove},
	"PATCH /admin/kyc/{id}/reject":   {roledomain.PermKYCApprove},
	"POST /admin/blacklist/ip":       {roledomain.PermSystemSecurity},
	"POST /admin/block-email":        {roledomain.PermSystemSecurity},
	"GET /admin/dashboard/metrics":   {roledomain.PermUserRead},
	"GET /admin/audit-logs":          {roledomain.PermSystemSecurity},

	"POST /services/admin/service-categories": {roledomain.PermUserWrite},
	"POST /cities":                            {roledomain.PermUserWrite},
	"GET /tenants":                            {roledomain.PermSystemSecurity},
	"POST /tenants":                           {roledomain.PermSystemSecurity},
}

// RequiredPermissions returns the permissions guarding method and pattern. A nil result means
// the route needs none.
func RequiredPermissions(method, pattern string) []string {
	return RoutePermissions[method+" "+trimAPIPrefix(pattern)]
}

// Allowed reports whether held satisfies required: an empty requirement always passes,
// otherwise one match is enough.
func Allowed(required, held []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		for _, h := range held {
			if r == h {
				return true
			}
		}
	}
	return false
}

func trimAPIPrefix(pattern string) string {
	p := strings.TrimSuffix(pattern, "/")
	if rest, ok := strings.CutPrefix(p, "/api/v1"); ok && (rest == "" || rest[0] == '/') {
		p = rest
	}
	if p == "" {
		return "/"
	}
	return p
}
