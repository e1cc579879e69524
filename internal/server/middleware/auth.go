package middleware

import (
	"net/http"
	"strings"

	"servease/backend/internal/security"
	"servease/backend/internal/server/httpx"
)

const bearerPrefix = "bearer "

// Authenticate validates the Bearer access token and stores the caller Identity in the context.
// Requests without a valid token get 401.
func Authenticate(tokens *security.TokenProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			claims, err := tokens.ValidateAccess(token)
			if err != nil {
				httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			ctx := WithIdentity(r.Context(), Identity{
				UserID:        claims.Subject,
				Email:         claims.Email,
				AccountType:   claims.AccountType,
				AccountStatus: claims.AccountStatus,
			})
			r = r.WithContext(ctx)
			capture(r)
			next.ServeHTTP(w, r)
		})
	}
}

// extractBearer returns the Bearer token from the Authorization header, or "" if missing or malformed.
func extractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
