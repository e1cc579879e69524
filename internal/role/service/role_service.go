// Package service manages roles and their permission sets.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"servease/backend/internal/db"
	"servease/backend/internal/role/domain"
)

var (
	ErrRoleExists        = errors.New("role with this name already exists")
	ErrRoleNotFound      = errors.New("role not found")
	ErrRoleNameRequired  = errors.New("role name is required")
	ErrPermissionsNeeded = errors.New("at least one permission is required")
)

// Repo is the role persistence used by RoleService.
type Repo interface {
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	Create(ctx context.Context, r *domain.Role, permissionIDs []string) error
	Update(ctx context.Context, id, name string, permissionIDs []string) (bool, error)
}

// RoleService creates and updates roles.
type RoleService struct {
	repo Repo
	now  func() time.Time
}

// NewRoleService returns a RoleService backed by repo.
func NewRoleService(repo Repo) *RoleService {
	return &RoleService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// CreateRole creates a role holding the given permissions and returns it as stored.
func (s *RoleService) CreateRole(ctx context.Context, name, description string, permissionIDs []string) (*domain.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRoleNameRequired
	}
	if len(permissionIDs) == 0 {
		return nil, ErrPermissionsNeeded
	}
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRoleExists
	}
	now := s.now()
	role := &domain.Role{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, role, dedupe(permissionIDs)); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrRoleExists
		}
		return nil, err
	}
	return s.reload(ctx, role.ID)
}

// UpdateRole renames the role and replaces its permission set.
func (s *RoleService) UpdateRole(ctx context.Context, id, name string, permissionIDs []string) (*domain.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrRoleNameRequired
	}
	if len(permissionIDs) == 0 {
		return nil, ErrPermissionsNeeded
	}
	if other, err := s.repo.GetByName(ctx, name); err != nil {
		return nil, err
	} else if other != nil && other.ID != id {
		return nil, ErrRoleExists
	}
	ok, err := s.repo.Update(ctx, id, name, dedupe(permissionIDs))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrRoleExists
		}
		return nil, err
	}
	if !ok {
		return nil, ErrRoleNotFound
	}
	return s.reload(ctx, id)
}

func (s *RoleService) reload(ctx context.Context, id string) (*domain.Role, error) {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, ErrRoleNotFound
	}
	return role, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
