package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"servease/backend/internal/role/domain"
)

type roleRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type permissionRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	CreatedAt   time.Time      `db:"created_at"`
}

// PostgresRepository stores roles in roles, permissions and role_permissions.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a role repository backed by db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the role with its permissions, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	return r.getOne(ctx, `SELECT id, name, description, created_at, updated_at FROM roles WHERE id = $1`, id)
}

// GetByName returns the role with its permissions, or nil if not found.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.getOne(ctx, `SELECT id, name, description, created_at, updated_at FROM roles WHERE name = $1`, name)
}

// Create inserts the role and its permission links in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, role *domain.Role, permissionIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO roles (id, name, description, created_at, updated_at)
		VALUES (:id, :name, :description, :created_at, :updated_at)`,
		roleRow{
			ID:          role.ID,
			Name:        role.Name,
			Description: sql.NullString{String: role.Description, Valid: role.Description != ""},
			CreatedAt:   role.CreatedAt,
			UpdatedAt:   role.UpdatedAt,
		}); err != nil {
		return err
	}
	if err := linkPermissions(ctx, tx, role.ID, permissionIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// Update renames the role and replaces its permissions in one transaction.
func (r *PostgresRepository) Update(ctx context.Context, id, name string, permissionIDs []string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE roles SET name = $2, updated_at = $3 WHERE id = $1`, id, name, time.Now().UTC())
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
		return false, err
	}
	if err := linkPermissions(ctx, tx, id, permissionIDs); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// linkPermissions links existing permissions; ids with no permission row are skipped.
func linkPermissions(ctx context.Context, tx *sqlx.Tx, roleID string, permissionIDs []string) error {
	for _, pid := range permissionIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO role_permissions (role_id, permission_id)
			SELECT $1, id FROM permissions WHERE id = $2
			ON CONFLICT DO NOTHING`, roleID, pid); err != nil {
			return fmt.Errorf("link permission %s: %w", pid, err)
		}
	}
	return nil
}

// PermissionsForUser returns the permission names granted through the user's role.
func (r *PostgresRepository) PermissionsForUser(ctx context.Context, userID string) ([]string, error) {
	var names []string
	err := r.db.SelectContext(ctx, &names, `
		SELECT p.name
		FROM users u
		JOIN role_permissions rp ON rp.role_id = u.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE u.id = $1
		ORDER BY p.name`, userID)
	if err != nil {
		return nil, err
	}
	return names, nil
}

// ListPermissions returns every permission by name.
func (r *PostgresRepository) ListPermissions(ctx context.Context) ([]*domain.Permission, error) {
	var rows []permissionRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT id, name, description, created_at FROM permissions ORDER BY name`); err != nil {
		return nil, err
	}
	return permissionsFromRows(rows), nil
}

// EnsurePermission upserts a permission by name and returns its id.
func (r *PostgresRepository) EnsurePermission(ctx context.Context, name, description string) (string, error) {
	var id string
	err := r.db.GetContext(ctx, &id, `
		INSERT INTO permissions (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description
		RETURNING id`, uuid.New().String(), name, description, time.Now().UTC())
	return id, err
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*domain.Role, error) {
	var row roleRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	var perms []permissionRow
	if err := r.db.SelectContext(ctx, &perms, `
		SELECT p.id, p.name, p.description, p.created_at
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		WHERE rp.role_id = $1
		ORDER BY p.name`, row.ID); err != nil {
		return nil, err
	}
	return &domain.Role{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description.String,
		Permissions: permissionsFromRows(perms),
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func permissionsFromRows(rows []permissionRow) []*domain.Permission {
	out := make([]*domain.Permission, len(rows))
	for i, p := range rows {
		out[i] = &domain.Permission{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description.String,
			CreatedAt:   p.CreatedAt,
		}
	}
	return out
}
