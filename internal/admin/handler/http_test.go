package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servease/backend/internal/admin/domain"
	"servease/backend/internal/admin/service"
	auditdomain "servease/backend/internal/audit/domain"
	"servease/backend/internal/blocklist"
	blocklistdomain "servease/backend/internal/blocklist/domain"
	kycdomain "servease/backend/internal/kyc/domain"
	kycservice "servease/backend/internal/kyc/service"
	roledomain "servease/backend/internal/role/domain"
	roleservice "servease/backend/internal/role/service"
	"servease/backend/internal/server/middleware"
	userdomain "servease/backend/internal/user/domain"
)

const permID = "5f1c8a34-2b7e-4d9f-a6c1-3e8b7d2f0a91"

type fakeAdmin struct {
	auditTenant string
	auditLimit  int32
}

func (f *fakeAdmin) ListUsers(context.Context, int32, int32) ([]*domain.UserSummary, error) {
	return []*domain.UserSummary{{ID: "u1", Email: "admin@servease.com", Role: &domain.UserRole{Name: "Admin", Permissions: []string{"USER_READ"}}}}, nil
}

func (f *fakeAdmin) UpdateUserStatus(_ context.Context, id string, _ userdomain.AccountStatus) error {
	if id != "u1" {
		return service.ErrUserNotFound
	}
	return nil
}

func (f *fakeAdmin) Metrics(context.Context) (*domain.Metrics, error) {
	return &domain.Metrics{TotalUsers: 4, ActiveUsers: 3, PendingKYC: 1, ServiceProviders: 2, Bookings: 5, Tenants: 1}, nil
}

func (f *fakeAdmin) AuditLogs(_ context.Context, tenantID string, limit, _ int32) ([]*auditdomain.AuditLog, error) {
	f.auditTenant = tenantID
	f.auditLimit = limit
	return nil, nil
}

type fakeRoles struct{}

func (fakeRoles) CreateRole(_ context.Context, name, _ string, _ []string) (*roledomain.Role, error) {
	if name == "Admin" {
		return nil, roleservice.ErrRoleExists
	}
	return &roledomain.Role{ID: "r2", Name: name}, nil
}

func (fakeRoles) UpdateRole(_ context.Context, id, name string, _ []string) (*roledomain.Role, error) {
	if id != "r1" {
		return nil, roleservice.ErrRoleNotFound
	}
	return &roledomain.Role{ID: id, Name: name}, nil
}

type fakeKYC struct {
	reviewer string
	notes    string
}

func (f *fakeKYC) List(context.Context) ([]*kycdomain.KYC, error) { return nil, nil }

func (f *fakeKYC) Approve(_ context.Context, id, reviewerID, notes string) (*kycdomain.KYC, error) {
	if id != "k1" {
		return nil, kycservice.ErrKYCNotFound
	}
	f.reviewer, f.notes = reviewerID, notes
	return &kycdomain.KYC{ID: id, Status: kycdomain.StatusApproved, ReviewedBy: reviewerID, ReviewNotes: notes}, nil
}

func (f *fakeKYC) Reject(_ context.Context, id, reviewerID, notes string) (*kycdomain.KYC, error) {
	f.reviewer = reviewerID
	return &kycdomain.KYC{ID: id, Status: kycdomain.StatusRejected}, nil
}

type fakeBlocklist struct{}

func (fakeBlocklist) BlacklistIP(_ context.Context, ip, _ string) (*blocklistdomain.BlacklistedIP, error) {
	if ip == "10.0.0.1" {
		return nil, blocklist.ErrIPAlreadyBlacklisted
	}
	return &blocklistdomain.BlacklistedIP{ID: "b1", IPAddress: ip}, nil
}

func (fakeBlocklist) BlockEmail(_ context.Context, email, _ string) (*blocklistdomain.BlockedEmail, error) {
	if email == "spam@x.com" {
		return nil, blocklist.ErrEmailAlreadyBlocked
	}
	return &blocklistdomain.BlockedEmail{ID: "e1", Email: email}, nil
}

func newRouter(admin *fakeAdmin, kyc *fakeKYC) http.Handler {
	h := New(admin, fakeRoles{}, kyc, fakeBlocklist{})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithIdentity(req.Context(), middleware.Identity{UserID: "admin-1"})
			if t := req.Header.Get("X-Tenant-ID"); t != "" {
				ctx = middleware.WithTenantID(ctx, t)
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/admin/users", h.ListUsers)
	r.Patch("/admin/users/{id}/status", h.UpdateUserStatus)
	r.Post("/admin/roles", h.CreateRole)
	r.Patch("/admin/roles/{id}", h.UpdateRole)
	r.Get("/admin/kyc", h.ListKYC)
	r.Patch("/admin/kyc/{id}/approve", h.ApproveKYC)
	r.Patch("/admin/kyc/{id}/reject", h.RejectKYC)
	r.Post("/admin/blacklist/ip", h.BlacklistIP)
	r.Post("/admin/block-email", h.BlockEmail)
	r.Get("/admin/dashboard/metrics", h.Metrics)
	r.Get("/admin/audit-logs", h.AuditLogs)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	h.ServeHTTP(rec, req)
	return rec
}

func TestAdminRoutes(t *testing.T) {
	testCases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		want   string
	}{
		{"list users", http.MethodGet, "/admin/users", "", http.StatusOK, `"permissions":["USER_READ"]`},
		{"update status", http.MethodPatch, "/admin/users/u1/status", `{"status":"SUSPENDED"}`, http.StatusOK, "User status updated"},
		{"update status missing user", http.MethodPatch, "/admin/users/u9/status", `{"status":"ACTIVE"}`, http.StatusNotFound, "User not found"},
		{"update status bad value", http.MethodPatch, "/admin/users/u1/status", `{"status":"FROZEN"}`, http.StatusBadRequest, "status must be one of"},
		{"create role", http.MethodPost, "/admin/roles", `{"name":"Support","permissionIds":["` + permID + `"]}`, http.StatusCreated, `"name":"Support"`},
		{"create duplicate role", http.MethodPost, "/admin/roles", `{"name":"Admin","permissionIds":["` + permID + `"]}`, http.StatusConflict, "already exists"},
		{"create role without permissions", http.MethodPost, "/admin/roles", `{"name":"Empty","permissionIds":[]}`, http.StatusBadRequest, "permissionIds"},
		{"create role bad permission id", http.MethodPost, "/admin/roles", `{"name":"X","permissionIds":["nope"]}`, http.StatusBadRequest, "must be a UUID"},
		{"update role", http.MethodPatch, "/admin/roles/r1", `{"name":"Ops","permissionIds":["` + permID + `"]}`, http.StatusOK, `"name":"Ops"`},
		{"update missing role", http.MethodPatch, "/admin/roles/r9", `{"name":"Ops","permissionIds":["` + permID + `"]}`, http.StatusNotFound, "Role not found"},
		{"list kyc", http.MethodGet, "/admin/kyc", "", http.StatusOK, `[]`},
		{"approve missing kyc", http.MethodPatch, "/admin/kyc/k9/approve", "", http.StatusNotFound, "KYC not found"},
		{"reject kyc", http.MethodPatch, "/admin/kyc/k1/reject", "", http.StatusOK, `"status":"REJECTED"`},
		{"blacklist ip", http.MethodPost, "/admin/blacklist/ip", `{"ipAddress":"192.168.1.9","reason":"abuse"}`, http.StatusCreated, `"ipAddress":"192.168.1.9"`},
		{"blacklist duplicate ip", http.MethodPost, "/admin/blacklist/ip", `{"ipAddress":"10.0.0.1"}`, http.StatusForbidden, "IP already blacklisted"},
		{"blacklist invalid ip", http.MethodPost, "/admin/blacklist/ip", `{"ipAddress":"300.1.1.1"}`, http.StatusBadRequest, "ipAddress must be a valid IP address"},
		{"block email", http.MethodPost, "/admin/block-email", `{"email":"bad@x.com"}`, http.StatusCreated, `"email":"bad@x.com"`},
		{"block duplicate email", http.MethodPost, "/admin/block-email", `{"email":"spam@x.com"}`, http.StatusForbidden, "Email already blocked"},
		{"metrics", http.MethodGet, "/admin/dashboard/metrics", "", http.StatusOK, `"pendingKyc":1`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, newRouter(&fakeAdmin{}, &fakeKYC{}), tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.want)
		})
	}
}

func TestApproveKYC_RecordsReviewer(t *testing.T) {
	kyc := &fakeKYC{}
	rec := do(t, newRouter(&fakeAdmin{}, kyc), http.MethodPatch, "/admin/kyc/k1/approve", `{"notes":"looks good"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin-1", kyc.reviewer)
	assert.Equal(t, "looks good", kyc.notes)
	assert.Contains(t, rec.Body.String(), `"status":"APPROVED"`)
}

func TestAuditLogs_TenantAndPagination(t *testing.T) {
	admin := &fakeAdmin{}
	h := newRouter(admin, &fakeKYC{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/audit-logs?limit=1000", nil)
	req.Header.Set("X-Tenant-ID", "t1")
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Equal(t, "t1", admin.auditTenant)
	assert.Equal(t, int32(500), admin.auditLimit)
}
