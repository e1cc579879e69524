package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"servease/backend/internal/server/httpx"
)

// TenantHeader carries an explicit tenant id.
const TenantHeader = "X-Tenant-ID"

// TenantLookup resolves tenants for ResolveTenant.
type TenantLookup interface {
	// TenantExists reports whether a tenant with id exists.
	TenantExists(ctx context.Context, id string) (bool, error)
	// ActiveTenantIDBySubdomain returns the id of the active tenant with subdomain, or "".
	ActiveTenantIDBySubdomain(ctx context.Context, subdomain string) (string, error)
}

// ResolveTenant puts the request's tenant id in the context. The X-Tenant-ID header wins;
// otherwise the first host label is looked up as an active tenant subdomain. A header naming
// an unknown tenant gets 404. Requests with no tenant pass through unchanged.
func ResolveTenant(lookup TenantLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			tenantID := strings.TrimSpace(r.Header.Get(TenantHeader))
			if tenantID != "" {
				ok, err := lookup.TenantExists(ctx, tenantID)
				if err != nil {
					httpx.WriteInternal(w, r, err)
					return
				}
				if !ok {
					httpx.WriteError(w, http.StatusNotFound, "Tenant not found")
					return
				}
			} else if sub := subdomain(r.Host); sub != "" {
				id, err := lookup.ActiveTenantIDBySubdomain(ctx, sub)
				if err != nil {
					httpx.WriteInternal(w, r, err)
					return
				}
				tenantID = id
			}
			if tenantID != "" {
				r = r.WithContext(WithTenantID(ctx, tenantID))
				capture(r)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// subdomain returns the first label of host, ignoring localhost and IPs.
func subdomain(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "" || host == "localhost" || net.ParseIP(host) != nil {
		return ""
	}
	label, _, _ := strings.Cut(host, ".")
	return strings.ToLower(label)
}
