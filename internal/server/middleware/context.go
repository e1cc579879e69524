// Package middleware holds the chi middleware shared by every route group and the request
// context accessors handlers use to read the caller.
package middleware

import "context"

type contextKey struct{ name string }

var (
	identityKey = contextKey{"identity"}
	tenantIDKey = contextKey{"tenant_id"}
	clientIPKey = contextKey{"client_ip"}
)

// Identity is the authenticated caller, taken from access token claims.
type Identity struct {
	UserID        string `json:"id"`
	Email         string `json:"email"`
	AccountType   string `json:"accountType"`
	AccountStatus string `json:"accountStatus"`
}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity returns the caller identity and true if the request was authenticated.
func GetIdentity(ctx context.Context) (Identity, bool) {
	v, ok := ctx.Value(identityKey).(Identity)
	return v, ok && v.UserID != ""
}

// GetUserID returns the caller's user id, or "" when unauthenticated.
func GetUserID(ctx context.Context) string {
	id, _ := GetIdentity(ctx)
	return id.UserID
}

// WithTenantID returns a context carrying the resolved tenant id.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// GetTenantID returns the resolved tenant id, or "" when none was resolved.
func GetTenantID(ctx context.Context) string {
	v, _ := ctx.Value(tenantIDKey).(string)
	return v
}

// WithClientIP returns a context carrying the client IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// GetClientIP returns the client IP stored by ClientIP, or "".
func GetClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey).(string)
	return v
}
