package rbac

import (
	"context"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"servease/backend/internal/server/httpx"
	"servease/backend/internal/server/middleware"
	userdomain "servease/backend/internal/user/domain"
)

// PermissionLookup resolves the permission names a user holds through their role.
type PermissionLookup interface {
	PermissionsForUser(ctx context.Context, userID string) ([]string, error)
}

// RequireActive rejects callers whose account status is not ACTIVE.
func RequireActive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.GetIdentity(r.Context())
		if !ok {
			httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if userdomain.AccountStatus(id.AccountStatus) != userdomain.AccountStatusActive {
			httpx.WriteError(w, http.StatusForbidden, "Account is "+id.AccountStatus+". Please contact support.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAccountTypes admits only callers whose account type is in types.
func RequireAccountTypes(types ...userdomain.AccountType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := middleware.GetIdentity(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !slices.Contains(types, userdomain.AccountType(id.AccountType)) {
				httpx.WriteError(w, http.StatusForbidden, "Access denied for this account type")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermissions enforces RoutePermissions for the matched route. It must run after routing,
// so mount it with Group or With rather than on a Route subrouter.
func RequirePermissions(lookup PermissionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			required := RequiredPermissions(r.Method, routePattern(r))
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			id, ok := middleware.GetIdentity(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			held, err := lookup.PermissionsForUser(r.Context(), id.UserID)
			if err != nil {
				zap.L().Error("rbac: permission lookup failed", zap.String("user_id", id.UserID), zap.Error(err))
				httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !Allowed(required, held) {
				httpx.WriteError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
