package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	admindomain "servease/backend/internal/admin/domain"
	adminhandler "servease/backend/internal/admin/handler"
	auditdomain "servease/backend/internal/audit/domain"
	authhandler "servease/backend/internal/auth/handler"
	authservice "servease/backend/internal/auth/service"
	bookinghandler "servease/backend/internal/booking/handler"
	cataloghandler "servease/backend/internal/catalog/handler"
	cityhandler "servease/backend/internal/city/handler"
	"servease/backend/internal/devotp"
	devotphandler "servease/backend/internal/devotp/handler"
	healthhandler "servease/backend/internal/health/handler"
	kycdomain "servease/backend/internal/kyc/domain"
	kychandler "servease/backend/internal/kyc/handler"
	paymenthandler "servease/backend/internal/payment/handler"
	"servease/backend/internal/ratelimit"
	roledomain "servease/backend/internal/role/domain"
	"servease/backend/internal/security"
	"servease/backend/internal/server/httpx"
	tenanthandler "servease/backend/internal/tenant/handler"
	userdomain "servease/backend/internal/user/domain"
)

type fakeAdmin struct{}

func (fakeAdmin) ListUsers(context.Context, int32, int32) ([]*admindomain.UserSummary, error) {
	return []*admindomain.UserSummary{}, nil
}
func (fakeAdmin) UpdateUserStatus(context.Context, string, userdomain.AccountStatus) error {
	return nil
}
func (fakeAdmin) Metrics(context.Context) (*admindomain.Metrics, error) {
	return &admindomain.Metrics{TotalUsers: 1}, nil
}
func (fakeAdmin) AuditLogs(context.Context, string, int32, int32) ([]*auditdomain.AuditLog, error) {
	return nil, nil
}

type fakeKYC struct{}

func (fakeKYC) Submit(context.Context, string, string, string) (*kycdomain.KYC, error) {
	return &kycdomain.KYC{ID: "k1"}, nil
}
func (fakeKYC) Status(context.Context, string) ([]*kycdomain.KYC, error) { return nil, nil }

type permsByUser map[string][]string

func (p permsByUser) PermissionsForUser(_ context.Context, userID string) ([]string, error) {
	return p[userID], nil
}

type fakeBlocklist struct{ ip, email string }

func (f fakeBlocklist) IsIPBlacklisted(_ context.Context, ip string) (bool, error) {
	return ip == f.ip, nil
}
func (f fakeBlocklist) IsEmailBlocked(_ context.Context, email string) (bool, error) {
	return email == f.email, nil
}

type testAudit struct{ actions []string }

func (a *testAudit) LogEvent(_ context.Context, _, _, action, resource, _ string) {
	a.actions = append(a.actions, action+" "+resource)
}

func newTestDeps(t *testing.T) (Deps, *security.TokenProvider) {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	require.NoError(t, err)
	return Deps{
		Tokens:      tokens,
		Permissions: permsByUser{"admin-1": roledomain.AllPermissions, "support-1": {roledomain.PermKYCApprove}},
		Blocklist:   fakeBlocklist{ip: "203.0.113.9", email: "spam@x.com"},
		Auth:        authhandler.New(nil),
		Admin:       adminhandler.New(fakeAdmin{}, nil, nil, nil),
		KYC:         kychandler.New(fakeKYC{}),
		Catalog:     cataloghandler.New(nil),
		Bookings:    bookinghandler.New(nil),
		Payments:    paymenthandler.New(nil),
		Cities:      cityhandler.New(nil),
		Tenant:      tenanthandler.New(nil),
		Health:      healthhandler.New(nil),
	}, tokens
}

func bearer(t *testing.T, tokens *security.TokenProvider, userID string, typ userdomain.AccountType, status userdomain.AccountStatus) string {
	t.Helper()
	tok, _, err := tokens.IssueAccess(security.Subject{
		UserID: userID, Email: userID + "@servease.com", AccountType: string(typ), AccountStatus: string(status),
	})
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestRouter_Guards(t *testing.T) {
	deps, tokens := newTestDeps(t)
	h := NewRouter(deps)

	admin := bearer(t, tokens, "admin-1", userdomain.AccountTypeAdmin, userdomain.AccountStatusActive)
	support := bearer(t, tokens, "support-1", userdomain.AccountTypeAdmin, userdomain.AccountStatusActive)
	customer := bearer(t, tokens, "cust-1", userdomain.AccountTypeCustomer, userdomain.AccountStatusActive)
	suspended := bearer(t, tokens, "cust-2", userdomain.AccountTypeCustomer, userdomain.AccountStatusSuspended)
	pendingProvider := bearer(t, tokens, "prov-1", userdomain.AccountTypeProviderIndependent, userdomain.AccountStatusPending)
	refresh, _, err := tokens.IssueRefresh("rt-1", "cust-1")
	require.NoError(t, err)
	refreshBearer := "Bearer " + refresh

	testCases := []struct {
		name   string
		method string
		path   string
		auth   string
		status int
		msg    string
	}{
		{"health is public", http.MethodGet, "/api/v1/health", "", http.StatusOK, ""},
		{"unknown route", http.MethodGet, "/api/v1/nope", "", http.StatusNotFound, "Not found"},
		{"profile needs token", http.MethodGet, "/api/v1/auth/profile", "", http.StatusUnauthorized, "Unauthorized"},
		{"refresh token is not a bearer", http.MethodPost, "/api/v1/auth/logout", refreshBearer, http.StatusUnauthorized, "Unauthorized"},
		{"refresh token cannot read profile", http.MethodGet, "/api/v1/auth/profile", refreshBearer, http.StatusUnauthorized, "Unauthorized"},
		{"profile with token", http.MethodGet, "/api/v1/auth/profile", suspended, http.StatusOK, ""},
		{"bookings need active account", http.MethodGet, "/api/v1/bookings", suspended, http.StatusForbidden, "Account is SUSPENDED. Please contact support."},
		{"admin needs permission", http.MethodGet, "/api/v1/admin/dashboard/metrics", customer, http.StatusForbidden, "Insufficient permissions"},
		{"admin with permission", http.MethodGet, "/api/v1/admin/dashboard/metrics", admin, http.StatusOK, ""},
		{"admin with other permission", http.MethodGet, "/api/v1/admin/users", support, http.StatusForbidden, "Insufficient permissions"},
		{"tenants need security permission", http.MethodGet, "/api/v1/tenants", support, http.StatusForbidden, "Insufficient permissions"},
		{"kyc rejects customers", http.MethodGet, "/api/v1/kyc/status", customer, http.StatusForbidden, "Access denied for this account type"},
		{"kyc open to pending providers", http.MethodGet, "/api/v1/kyc/status", pendingProvider, http.StatusOK, ""},
		{"service creation is provider only", http.MethodPost, "/api/v1/services", customer, http.StatusForbidden, "Access denied for this account type"},
		{"dev otp unmounted", http.MethodGet, "/api/v1/dev/otp?email=a@x.com", "", http.StatusNotFound, "Not found"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			req.RemoteAddr = "198.51.100.1:5000"
			if tc.auth != "" {
				req.Header.Set("Authorization", tc.auth)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.msg != "" {
				var body httpx.ErrorBody
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tc.msg, body.Message)
			}
		})
	}
}

func TestRouter_Blocklists(t *testing.T) {
	deps, _ := newTestDeps(t)
	h := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.RemoteAddr = "203.0.113.9:4000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Access denied from this IP address")

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.RemoteAddr = "203.0.113.9:4000"
	req.Header.Set("X-Forwarded-For", "198.51.100.20")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code, "forwarded header cannot hide a blocked peer")

	deps.TrustedProxies = 1
	proxied := NewRouter(deps)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.RemoteAddr = "10.0.0.2:80"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	rec = httptest.NewRecorder()
	proxied.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code, "client address reported by a trusted proxy")

	for _, path := range []string{"/api/v1/auth/signup", "/api/v1/auth/signin"} {
		req = httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"email":"SPAM@x.com","password":"secret123"}`))
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "This email address is blocked")
	}
}

func TestRouter_AuditsAdminMutations(t *testing.T) {
	deps, tokens := newTestDeps(t)
	rec := &testAudit{}
	deps.Audit = rec
	h := NewRouter(deps)
	admin := bearer(t, tokens, "admin-1", userdomain.AccountTypeAdmin, userdomain.AccountStatusActive)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/users/u1/status", strings.NewReader(`{"status":"SUSPENDED"}`))
	req.Header.Set("Authorization", admin)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
	req.Header.Set("Authorization", admin)
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Len(t, rec.actions, 1, "reads are not audited")
}

func TestRouter_DevOTPAndRateLimit(t *testing.T) {
	deps, _ := newTestDeps(t)
	store := devotp.NewMemoryStore()
	store.Put(context.Background(), "a@x.com", "signin", "123456", time.Now().Add(time.Minute))
	deps.DevOTP = devotphandler.New(store)
	deps.Limiter = ratelimit.NewMemoryLimiter(2, time.Minute)
	deps.RateLimit = 2
	deps.RateLimitWindow = time.Minute
	h := NewRouter(deps)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/dev/otp?email=a@x.com&purpose=signin", nil)
		req.RemoteAddr = "192.0.2.10:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRouter_RateLimitIgnoresForwardedFor(t *testing.T) {
	deps, _ := newTestDeps(t)
	deps.Limiter = ratelimit.NewMemoryLimiter(2, time.Minute)
	deps.RateLimit = 2
	deps.RateLimitWindow = time.Minute
	h := NewRouter(deps)

	admitted := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		req.RemoteAddr = "198.51.100.9:5000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.1.0.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			admitted++
		}
	}
	assert.Equal(t, 2, admitted, "rotating X-Forwarded-For must not reset the throttle")
}

type rejectingAuth struct{ authhandler.AuthService }

func (rejectingAuth) VerifySigninOTP(context.Context, string, string) (*authservice.TokenPair, error) {
	return nil, authservice.ErrInvalidOTP
}

func (rejectingAuth) VerifySignupOTP(context.Context, string, string) error {
	return authservice.ErrInvalidOTP
}

func TestRouter_VerifyOTPThrottledPerEmail(t *testing.T) {
	deps, _ := newTestDeps(t)
	deps.Auth = authhandler.New(rejectingAuth{})
	deps.OTPLimiter = ratelimit.NewMemoryLimiter(3, 5*time.Minute)
	deps.OTPAttempts = 3
	deps.OTPWindow = 5 * time.Minute
	h := NewRouter(deps)

	post := func(path, email string, i int) int {
		body := fmt.Sprintf(`{"email":%q,"otp":"%06d"}`, email, i)
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.RemoteAddr = fmt.Sprintf("198.51.100.%d:5000", i)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		codes = append(codes, post("/api/v1/auth/signin/verify-otp", "victim@x.com", i))
	}
	assert.Equal(t, []int{
		http.StatusUnauthorized, http.StatusUnauthorized, http.StatusUnauthorized,
		http.StatusTooManyRequests, http.StatusTooManyRequests,
	}, codes, "attempts from many addresses share the email budget")

	assert.Equal(t, http.StatusUnauthorized, post("/api/v1/auth/signin/verify-otp", "other@x.com", 9))
	assert.Equal(t, http.StatusTooManyRequests, post("/api/v1/auth/signup/verify-otp", "VICTIM@x.com", 10))
}
