// Package handler serves the /admin console routes. Authentication and permission checks are
// applied by the router before these handlers run.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"servease/backend/internal/admin/domain"
	"servease/backend/internal/admin/service"
	auditdomain "servease/backend/internal/audit/domain"
	"servease/backend/internal/blocklist"
	blocklistdomain "servease/backend/internal/blocklist/domain"
	kycdomain "servease/backend/internal/kyc/domain"
	kycservice "servease/backend/internal/kyc/service"
	roledomain "servease/backend/internal/role/domain"
	roleservice "servease/backend/internal/role/service"
	"servease/backend/internal/server/httpx"
	"servease/backend/internal/server/middleware"
	userdomain "servease/backend/internal/user/domain"
)

// AdminService is the subset of *service.AdminService used by the handler.
type AdminService interface {
	ListUsers(ctx context.Context, limit, offset int32) ([]*domain.UserSummary, error)
	UpdateUserStatus(ctx context.Context, id string, status userdomain.AccountStatus) error
	Metrics(ctx context.Context) (*domain.Metrics, error)
	AuditLogs(ctx context.Context, tenantID string, limit, offset int32) ([]*auditdomain.AuditLog, error)
}

// RoleService creates and updates roles.
type RoleService interface {
	CreateRole(ctx context.Context, name, description string, permissionIDs []string) (*roledomain.Role, error)
	UpdateRole(ctx context.Context, id, name string, permissionIDs []string) (*roledomain.Role, error)
}

// KYCReviewer lists and reviews KYC submissions.
type KYCReviewer interface {
	List(ctx context.Context) ([]*kycdomain.KYC, error)
	Approve(ctx context.Context, id, reviewerID, notes string) (*kycdomain.KYC, error)
	Reject(ctx context.Context, id, reviewerID, notes string) (*kycdomain.KYC, error)
}

// Blocklister adds blocklist entries.
type Blocklister interface {
	BlacklistIP(ctx context.Context, ip, reason string) (*blocklistdomain.BlacklistedIP, error)
	BlockEmail(ctx context.Context, email, reason string) (*blocklistdomain.BlockedEmail, error)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE PENDING SUSPENDED BLOCKED BLACKLISTED"`
}

type createRoleRequest struct {
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description"`
	PermissionIDs []string `json:"permissionIds" validate:"required,min=1,dive,uuid"`
}

type updateRoleRequest struct {
	Name          string   `json:"name" validate:"required"`
	PermissionIDs []string `json:"permissionIds" validate:"required,min=1,dive,uuid"`
}

type reviewRequest struct {
	Notes string `json:"notes"`
}

type blacklistIPRequest struct {
	IPAddress string `json:"ipAddress" validate:"required,ip"`
	Reason    string `json:"reason"`
}

type blockEmailRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Reason string `json:"reason"`
}

// Handler serves the admin console.
type Handler struct {
	admin     AdminService
	roles     RoleService
	kyc       KYCReviewer
	blocklist Blocklister
}

// New returns an admin Handler.
func New(admin AdminService, roles RoleService, kyc KYCReviewer, blocklist Blocklister) *Handler {
	return &Handler{admin: admin, roles: roles, kyc: kyc, blocklist: blocklist}
}

// ListUsers handles GET /admin/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpx.Pagination(r, 50, 200)
	users, err := h.admin.ListUsers(r.Context(), limit, offset)
	if err != nil {
		httpx.WriteInternal(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, users)
}

// UpdateUserStatus handles PATCH /admin/users/{id}/status.
func (h *Handler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	err := h.admin.UpdateUserStatus(r.Context(), chi.URLParam(r, "id"), userdomain.AccountStatus(req.Status))
	switch {
	case err == nil:
		httpx.WriteMessage(w, http.StatusOK, "User status updated")
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrInvalidStatus):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httpx.WriteInternal(w, r, err)
	}
}

// CreateRole handles POST /admin/roles.
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	role, err := h.roles.CreateRole(r.Context(), req.Name, req.Description, req.PermissionIDs)
	if err != nil {
		writeRoleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, role)
}

// UpdateRole handles PATCH /admin/roles/{id}.
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	role, err := h.roles.UpdateRole(r.Context(), chi.URLParam(r, "id"), req.Name, req.PermissionIDs)
	if err != nil {
		writeRoleError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, role)
}

// ListKYC handles GET /admin/kyc.
func (h *Handler) ListKYC(w http.ResponseWriter, r *http.Request) {
	list, err := h.kyc.List(r.Context())
	if err != nil {
		httpx.WriteInternal(w, r, err)
		return
	}
	if list == nil {
		list = []*kycdomain.KYC{}
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

// ApproveKYC handles PATCH /admin/kyc/{id}/approve.
func (h *Handler) ApproveKYC(w http.ResponseWriter, r *http.Request) {
	h.reviewKYC(w, r, h.kyc.Approve)
}

// RejectKYC handles PATCH /admin/kyc/{id}/reject.
func (h *Handler) RejectKYC(w http.ResponseWriter, r *http.Request) {
	h.reviewKYC(w, r, h.kyc.Reject)
}

func (h *Handler) reviewKYC(w http.ResponseWriter, r *http.Request, review func(ctx context.Context, id, reviewerID, notes string) (*kycdomain.KYC, error)) {
	var req reviewRequest
	if err := httpx.DecodeOptional(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	k, err := review(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()), req.Notes)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusOK, k)
	case errors.Is(err, kycservice.ErrKYCNotFound):
		httpx.WriteError(w, http.StatusNotFound, "KYC not found")
	default:
		httpx.WriteInternal(w, r, err)
	}
}

// BlacklistIP handles POST /admin/blacklist/ip.
func (h *Handler) BlacklistIP(w http.ResponseWriter, r *http.Request) {
	var req blacklistIPRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	e, err := h.blocklist.BlacklistIP(r.Context(), req.IPAddress, req.Reason)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusCreated, e)
	case errors.Is(err, blocklist.ErrIPAlreadyBlacklisted):
		httpx.WriteError(w, http.StatusForbidden, "IP already blacklisted")
	default:
		httpx.WriteInternal(w, r, err)
	}
}

// BlockEmail handles POST /admin/block-email.
func (h *Handler) BlockEmail(w http.ResponseWriter, r *http.Request) {
	var req blockEmailRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	e, err := h.blocklist.BlockEmail(r.Context(), req.Email, req.Reason)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusCreated, e)
	case errors.Is(err, blocklist.ErrEmailAlreadyBlocked):
		httpx.WriteError(w, http.StatusForbidden, "Email already blocked")
	default:
		httpx.WriteInternal(w, r, err)
	}
}

// Metrics handles GET /admin/dashboard/metrics.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.admin.Metrics(r.Context())
	if err != nil {
		httpx.WriteInternal(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, m)
}

// AuditLogs handles GET /admin/audit-logs. A resolved tenant narrows the listing to that tenant.
func (h *Handler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := httpx.Pagination(r, 50, 500)
	logs, err := h.admin.AuditLogs(r.Context(), middleware.GetTenantID(r.Context()), limit, offset)
	if err != nil {
		httpx.WriteInternal(w, r, err)
		return
	}
	if logs == nil {
		logs = []*auditdomain.AuditLog{}
	}
	httpx.WriteJSON(w, http.StatusOK, logs)
}

func writeRoleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, roleservice.ErrRoleExists):
		httpx.WriteError(w, http.StatusConflict, "Role with this name already exists")
	case errors.Is(err, roleservice.ErrRoleNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Role not found")
	case errors.Is(err, roleservice.ErrRoleNameRequired), errors.Is(err, roleservice.ErrPermissionsNeeded):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httpx.WriteInternal(w, r, err)
	}
}
