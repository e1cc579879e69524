package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"servease/backend/internal/audit"
)

// Audit records an audit log entry after each successful mutating request in the group.
// Action and resource are derived from the matched route with audit.ParseRoute.
// Mount it inside an authenticated group; requests without an identity are not audited.
func Audit(logger audit.AuditLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logger == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				return
			}
			if ww.Status() >= http.StatusBadRequest {
				return
			}
			userID := GetUserID(r.Context())
			if userID == "" {
				return
			}
			ar := audit.ParseRoute(r.Method, routePattern(r))
			logger.LogEvent(r.Context(), GetTenantID(r.Context()), userID, ar.Action, ar.Resource, r.URL.Path)
		})
	}
}
