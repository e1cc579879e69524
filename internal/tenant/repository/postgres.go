package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"servease/backend/internal/tenant/domain"
)

const tenantColumns = `id, name, subdomain, is_active, created_at, updated_at`

type tenantRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Subdomain sql.NullString `db:"subdomain"`
	IsActive  bool           `db:"is_active"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// PostgresRepository stores tenants in the tenants table.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a tenant repository backed by db.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the tenant, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	var row tenantRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rowToDomain(&row), nil
}

// List returns every tenant by name.
func (r *PostgresRepository) List(ctx context.Context) ([]*domain.Tenant, error) {
	var rows []tenantRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+tenantColumns+` FROM tenants ORDER BY name`); err != nil {
		return nil, err
	}
	out := make([]*domain.Tenant, len(rows))
	for i := range rows {
		out[i] = rowToDomain(&rows[i])
	}
	return out, nil
}

// Create persists t. The caller sets ID and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Tenant) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO tenants (`+tenantColumns+`)
		VALUES (:id, :name, :subdomain, :is_active, :created_at, :updated_at)`,
		tenantRow{
			ID:        t.ID,
			Name:      t.Name,
			Subdomain: sql.NullString{String: t.Subdomain, Valid: t.Subdomain != ""},
			IsActive:  t.IsActive,
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
		})
	return err
}

// TenantExists reports whether a tenant with id exists. Ids that are not UUIDs never exist.
func (r *PostgresRepository) TenantExists(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM tenants WHERE id = $1)`, id)
	return exists, err
}

// ActiveTenantIDBySubdomain returns the active tenant's id for subdomain, or "" when none.
func (r *PostgresRepository) ActiveTenantIDBySubdomain(ctx context.Context, subdomain string) (string, error) {
	var id string
	err := r.db.GetContext(ctx, &id, `SELECT id FROM tenants WHERE subdomain = $1 AND is_active = TRUE`, subdomain)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return id, err
}

func rowToDomain(r *tenantRow) *domain.Tenant {
	return &domain.Tenant{
		ID:        r.ID,
		Name:      r.Name,
		Subdomain: r.Subdomain.String,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
