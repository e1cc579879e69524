// Package service implements the user and dashboard operations of the admin console.
// Role, KYC and blocklist mutations are delegated to their own services by the handler.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"servease/backend/internal/admin/domain"
	auditdomain "servease/backend/internal/audit/domain"
	roledomain "servease/backend/internal/role/domain"
	userdomain "servease/backend/internal/user/domain"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidStatus = errors.New("invalid account status")
)

// UserStore lists users and changes their status.
type UserStore interface {
	List(ctx context.Context, limit, offset int32) ([]*userdomain.User, error)
	UpdateStatus(ctx context.Context, id string, status userdomain.AccountStatus) (bool, error)
}

// RoleGetter loads a role with its permissions.
type RoleGetter interface {
	GetByID(ctx context.Context, id string) (*roledomain.Role, error)
}

// MetricsRepo reads dashboard counters.
type MetricsRepo interface {
	Metrics(ctx context.Context) (*domain.Metrics, error)
}

// AuditLister pages through audit logs. An empty tenantID lists every tenant.
type AuditLister interface {
	List(ctx context.Context, tenantID string, limit, offset int32) ([]*auditdomain.AuditLog, error)
}

// AdminService serves the admin console.
type AdminService struct {
	users   UserStore
	roles   RoleGetter
	metrics MetricsRepo
	audit   AuditLister
}

// NewAdminService returns an AdminService.
func NewAdminService(users UserStore, roles RoleGetter, metrics MetricsRepo, audit AuditLister) *AdminService {
	return &AdminService{users: users, roles: roles, metrics: metrics, audit: audit}
}

// ListUsers returns a page of users with their role and permission names.
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int32) ([]*domain.UserSummary, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	roles := make(map[string]*domain.UserRole)
	out := make([]*domain.UserSummary, 0, len(users))
	for _, u := range users {
		sum := &domain.UserSummary{
			ID:            u.ID,
			Email:         u.Email,
			Name:          u.Name,
			AccountType:   string(u.AccountType),
			AccountStatus: string(u.AccountStatus),
			TenantID:      u.TenantID,
			CityID:        u.CityID,
			CreatedAt:     u.CreatedAt,
		}
		if u.RoleID != "" {
			role, ok := roles[u.RoleID]
			if !ok {
				r, err := s.roles.GetByID(ctx, u.RoleID)
				if err != nil {
					return nil, err
				}
				if r != nil {
					role = &domain.UserRole{ID: r.ID, Name: r.Name, Permissions: r.PermissionNames()}
				}
				roles[u.RoleID] = role
			}
			sum.Role = role
		}
		out = append(out, sum)
	}
	return out, nil
}

// UpdateUserStatus sets a user's account status.
func (s *AdminService) UpdateUserStatus(ctx context.Context, id string, status userdomain.AccountStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrUserNotFound
	}
	ok, err := s.users.UpdateStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}
	return nil
}

// Metrics returns the dashboard counters.
func (s *AdminService) Metrics(ctx context.Context) (*domain.Metrics, error) {
	return s.metrics.Metrics(ctx)
}

// AuditLogs returns a page of audit logs, newest first.
func (s *AdminService) AuditLogs(ctx context.Context, tenantID string, limit, offset int32) ([]*auditdomain.AuditLog, error) {
	return s.audit.List(ctx, tenantID, limit, offset)
}
