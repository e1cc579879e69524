package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"servease/backend/internal/audit/domain"
)

const auditColumns = `id, tenant_id, user_id, action, resource, ip, metadata, created_at`

type auditRow struct {
	ID        string         `db:"id"`
	TenantID  string         `db:"tenant_id"`
	UserID    sql.NullString `db:"user_id"`
	Action    string         `db:"action"`
	Resource  string         `db:"resource"`
	IP        string         `db:"ip"`
	Metadata  sql.NullString `db:"metadata"`
	CreatedAt time.Time      `db:"created_at"`
}

// PostgresRepository stores audit logs in the audit_logs table.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the audit log for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	var row auditRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+auditColumns+` FROM audit_logs WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rowToDomain(&row), nil
}

// List returns audit logs paginated by limit and offset, optionally for one tenant.
func (r *PostgresRepository) List(ctx context.Context, tenantID string, limit, offset int32) ([]*domain.AuditLog, error) {
	var rows []auditRow
	var err error
	if tenantID == "" {
		err = r.db.SelectContext(ctx, &rows,
			`SELECT `+auditColumns+` FROM audit_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	} else {
		err = r.db.SelectContext(ctx, &rows,
			`SELECT `+auditColumns+` FROM audit_logs WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			tenantID, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	out := make([]*domain.AuditLog, len(rows))
	for i := range rows {
		out[i] = rowToDomain(&rows[i])
	}
	return out, nil
}

// Create persists the audit log entry. The entry must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO audit_logs (`+auditColumns+`)
		VALUES (:id, :tenant_id, :user_id, :action, :resource, :ip, :metadata, :created_at)`,
		auditRow{
			ID:        a.ID,
			TenantID:  a.TenantID,
			UserID:    sql.NullString{String: a.UserID, Valid: a.UserID != ""},
			Action:    a.Action,
			Resource:  a.Resource,
			IP:        a.IP,
			Metadata:  sql.NullString{String: a.Metadata, Valid: a.Metadata != ""},
			CreatedAt: a.CreatedAt,
		})
	return err
}

func rowToDomain(r *auditRow) *domain.AuditLog {
	return &domain.AuditLog{
		ID:        r.ID,
		TenantID:  r.TenantID,
		UserID:    r.UserID.String,
		Action:    r.Action,
		Resource:  r.Resource,
		IP:        r.IP,
		Metadata:  r.Metadata.String,
		CreatedAt: r.CreatedAt,
	}
}
