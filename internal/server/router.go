// Package server assembles the HTTP router: global middleware, route groups and their guards.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	adminhandler "servease/backend/internal/admin/handler"
	"servease/backend/internal/audit"
	authhandler "servease/backend/internal/auth/handler"
	bookinghandler "servease/backend/internal/booking/handler"
	cataloghandler "servease/backend/internal/catalog/handler"
	cityhandler "servease/backend/internal/city/handler"
	devotphandler "servease/backend/internal/devotp/handler"
	healthhandler "servease/backend/internal/health/handler"
	kychandler "servease/backend/internal/kyc/handler"
	paymenthandler "servease/backend/internal/payment/handler"
	"servease/backend/internal/platform/rbac"
	"servease/backend/internal/ratelimit"
	"servease/backend/internal/security"
	"servease/backend/internal/server/httpx"
	"servease/backend/internal/server/middleware"
	"servease/backend/internal/telemetry"
	telemetryotel "servease/backend/internal/telemetry/otel"
	tenanthandler "servease/backend/internal/tenant/handler"
	userdomain "servease/backend/internal/user/domain"
)

// APIPrefix is the path prefix of every route.
const APIPrefix = "/api/v1"

const requestTimeout = 60 * time.Second

// Deps holds everything the router mounts. Optional collaborators may be nil:
// a nil Blocklist or Tenants skips that middleware, a nil DevOTP leaves GET /dev/otp unmounted.
type Deps struct {
	Logger      *zap.Logger
	Tokens      *security.TokenProvider
	Permissions rbac.PermissionLookup
	Blocklist   middleware.BlocklistChecker
	Tenants     middleware.TenantLookup
	Audit       audit.AuditLogger
	Events      telemetry.EventEmitter
	Instruments *telemetryotel.HTTPInstruments

	// TrustedProxies is the number of reverse proxies whose X-Forwarded-For entries are
	// trusted. Zero keys clients on the TCP peer address.
	TrustedProxies  int
	Limiter         ratelimit.Limiter
	RateLimit       int
	RateLimitWindow time.Duration
	// OTPLimiter throttles the verify-otp routes per account email.
	OTPLimiter  ratelimit.Limiter
	OTPAttempts int
	OTPWindow   time.Duration
	CORSOrigins []string

	Auth     *authhandler.Handler
	Admin    *adminhandler.Handler
	KYC      *kychandler.Handler
	Catalog  *cataloghandler.Handler
	Bookings *bookinghandler.Handler
	Payments *paymenthandler.Handler
	Cities   *cityhandler.Handler
	Tenant   *tenanthandler.Handler
	DevOTP   *devotphandler.Handler
	Health   *healthhandler.Handler
}

// NewRouter returns the application handler.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.ClientIP(deps.TrustedProxies))
	r.Use(middleware.AccessLog(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.TenantHeader},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: !allowsAny(origins),
		MaxAge:           300,
	}))
	r.Use(middleware.Trace(deps.Instruments))
	r.Use(middleware.RequestEvents(deps.Events, map[string]bool{APIPrefix + "/health": true}))
	r.Use(ratelimit.Middleware(deps.Limiter, deps.RateLimit, deps.RateLimitWindow, middleware.ClientIPFromRequest))
	if deps.Blocklist != nil {
		r.Use(middleware.BlockIPs(deps.Blocklist))
	}
	if deps.Tenants != nil {
		r.Use(middleware.ResolveTenant(deps.Tenants))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route(APIPrefix, func(r chi.Router) {
		r.Get("/health", deps.Health.Check)
		if deps.DevOTP != nil {
			r.Get("/dev/otp", deps.DevOTP.GetOTP)
		}
		mountAuth(r, deps)
		mountPublic(r, deps)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(deps.Tokens))

			r.Post("/auth/logout", deps.Auth.Logout)
			r.Get("/auth/profile", deps.Auth.Profile)

			// KYC is how pending providers become active, so it skips the status gate.
			r.Group(func(r chi.Router) {
				r.Use(rbac.RequireAccountTypes(userdomain.ProviderTypes...))
				r.Post("/kyc/submit", deps.KYC.Submit)
				r.Get("/kyc/status", deps.KYC.Status)
			})

			r.Group(func(r chi.Router) {
				r.Use(rbac.RequireActive)
				mountMarketplace(r, deps)
				mountAdmin(r, deps)
			})
		})
	})
	return r
}

func mountAuth(r chi.Router, deps Deps) {
	blockEmails := func(next http.Handler) http.Handler { return next }
	if deps.Blocklist != nil {
		blockEmails = middleware.BlockEmails(deps.Blocklist)
	}
	r.With(blockEmails).Post("/auth/signup", deps.Auth.Signup)
	otpThrottle := ratelimit.Middleware(deps.OTPLimiter, deps.OTPAttempts, deps.OTPWindow, middleware.EmailKey)
	r.With(otpThrottle).Post("/auth/signup/verify-otp", deps.Auth.VerifySignupOTP)
	r.With(blockEmails).Post("/auth/signin", deps.Auth.Signin)
	r.With(otpThrottle).Post("/auth/signin/verify-otp", deps.Auth.VerifySigninOTP)
	r.Post("/auth/refresh", deps.Auth.Refresh)
}

func mountPublic(r chi.Router, deps Deps) {
	r.Get("/services/categories", deps.Catalog.Categories)
	r.Get("/services", deps.Catalog.Browse)
	r.Get("/services/{id}", deps.Catalog.Get)
	r.Get("/cities", deps.Cities.List)
	r.Get("/cities/{id}", deps.Cities.Get)
}

func mountMarketplace(r chi.Router, deps Deps) {
	r.With(rbac.RequireAccountTypes(userdomain.ProviderTypes...)).Post("/services", deps.Catalog.Create)

	r.Post("/bookings", deps.Bookings.Create)
	r.Get("/bookings", deps.Bookings.List)
	r.Get("/bookings/{id}", deps.Bookings.Get)
	r.Patch("/bookings/{id}/status", deps.Bookings.UpdateStatus)

	r.Get("/payments/booking/{bookingId}", deps.Payments.ForBooking)
	r.Post("/payments/booking/{bookingId}/intent", deps.Payments.CreateIntent)
	r.Patch("/payments/{id}/status", deps.Payments.UpdateStatus)
}

// mountAdmin mounts every route listed in rbac.RoutePermissions. Mutations are audited.
func mountAdmin(r chi.Router, deps Deps) {
	r.Group(func(r chi.Router) {
		r.Use(rbac.RequirePermissions(deps.Permissions))
		r.Use(middleware.Audit(deps.Audit))

		r.Get("/admin/users", deps.Admin.ListUsers)
		r.Patch("/admin/users/{id}/status", deps.Admin.UpdateUserStatus)
		r.Post("/admin/roles", deps.Admin.CreateRole)
		r.Patch("/admin/roles/{id}", deps.Admin.UpdateRole)
		r.Get("/admin/kyc", deps.Admin.ListKYC)
		r.Patch("/admin/kyc/{id}/approve", deps.Admin.ApproveKYC)
		r.Patch("/admin/kyc/{id}/reject", deps.Admin.RejectKYC)
		r.Post("/admin/blacklist/ip", deps.Admin.BlacklistIP)
		r.Post("/admin/block-email", deps.Admin.BlockEmail)
		r.Get("/admin/dashboard/metrics", deps.Admin.Metrics)
		r.Get("/admin/audit-logs", deps.Admin.AuditLogs)

		r.Post("/services/admin/service-categories", deps.Catalog.CreateCategory)
		r.Post("/cities", deps.Cities.Create)
		r.Get("/tenants", deps.Tenant.List)
		r.Post("/tenants", deps.Tenant.Create)
	})
}

func allowsAny(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
