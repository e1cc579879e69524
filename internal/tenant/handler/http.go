// Package handler serves the /tenants routes.
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"servease/backend/internal/db"
	"servease/backend/internal/server/httpx"
	"servease/backend/internal/tenant/domain"
)

// TenantRepo is the tenant persistence used by the handler.
type TenantRepo interface {
	List(ctx context.Context) ([]*domain.Tenant, error)
	Create(ctx context.Context, t *domain.Tenant) error
}

type createTenantRequest struct {
	Name      string `json:"name" validate:"required"`
	Subdomain string `json:"subdomain"`
}

// Handler serves tenant administration.
type Handler struct {
	repo TenantRepo
}

// New returns a tenant Handler.
func New(repo TenantRepo) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /tenants.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.repo.List(r.Context())
	if err != nil {
		httpx.WriteInternal(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tenants)
}

// Create handles POST /tenants.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	now := time.Now().UTC()
	t := &domain.Tenant{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(req.Name),
		Subdomain: strings.ToLower(strings.TrimSpace(req.Subdomain)),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.repo.Create(r.Context(), t); err != nil {
		if db.IsUniqueViolation(err) {
			httpx.WriteError(w, http.StatusConflict, "Tenant with this name or subdomain already exists")
			return
		}
		httpx.WriteInternal(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, t)
}
